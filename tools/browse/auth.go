package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionPayload struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Error     string `json:"error"`
}

// authenticate posts credentials to /api/auth/<action> and stores the session.
func (a *app) authenticate(ctx context.Context, action, email, password string) (localSession, error) {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return localSession{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.serverURL+"/api/auth/"+action, bytes.NewReader(body))
	if err != nil {
		return localSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpc.Do(req)
	if err != nil {
		return localSession{}, fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()

	var payload sessionPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if payload.Error != "" {
			return localSession{}, fmt.Errorf("%s failed: %s", action, payload.Error)
		}
		return localSession{}, fmt.Errorf("%s failed: status %d", action, resp.StatusCode)
	}

	s := localSession{Token: payload.Token, AccountID: payload.AccountID, Email: payload.Email}
	if err := a.saveSession(s); err != nil {
		return localSession{}, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

// logout revokes the server session (best effort) and forgets it locally.
func (a *app) logout(ctx context.Context) error {
	if token := a.token(); token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.serverURL+"/api/auth/logout", nil)
		if err == nil {
			req.Header.Set("Authorization", "Bearer "+token)
			if resp, err := a.httpc.Do(req); err == nil {
				resp.Body.Close()
			}
		}
	}
	return a.clearSession()
}
