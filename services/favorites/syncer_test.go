package favorites_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"reelhouse/models"
	"reelhouse/services/favorites"
)

func movie(id int64, title string) *models.MediaRef {
	return &models.MediaRef{ID: id, MediaType: models.MediaTypeMovie, Title: title}
}

func TestToggleSkipsWithoutUserOrTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	ctx := context.Background()

	assert.Equal(t, favorites.OutcomeSkipped, syncer.Toggle(ctx, "", false, movie(1, "A")).Result)
	assert.Equal(t, favorites.OutcomeSkipped, syncer.Toggle(ctx, "u1", false, nil).Result)
	assert.Equal(t, favorites.OutcomeSkipped, syncer.Toggle(ctx, "u1", false, movie(0, "A")).Result)
}

func TestToggleAddSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	ctx := context.Background()
	target := movie(7, "Heat")

	gomock.InOrder(
		store.EXPECT().Add(gomock.Any(), "u1", *target).Return(nil),
		store.EXPECT().Exists(gomock.Any(), "u1", int64(7)).Return(true, nil),
	)

	out := syncer.Toggle(ctx, "u1", false, target)
	require.Equal(t, favorites.OutcomeDone, out.Result)
	require.NotNil(t, out.Notice)
	assert.Equal(t, favorites.NoticeAdded, out.Notice.Kind)
	assert.Equal(t, "Successfully Added", out.Notice.Message)
	assert.Equal(t, "Heat", out.Notice.Title)

	assert.Equal(t, favorites.State{Known: favorites.Favorited, Phase: favorites.Idle}, syncer.Status("u1", 7))

	// Served from cache; no further Exists call is expected.
	fav, err := syncer.IsFavorited(ctx, "u1", 7)
	require.NoError(t, err)
	assert.True(t, fav)
}

func TestToggleRemoveSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	target := movie(8, "Ronin")

	store.EXPECT().Remove(gomock.Any(), "u1", int64(8)).Return(nil)
	store.EXPECT().Exists(gomock.Any(), "u1", int64(8)).Return(false, nil)

	out := syncer.Toggle(context.Background(), "u1", true, target)
	require.NotNil(t, out.Notice)
	assert.Equal(t, favorites.NoticeRemoved, out.Notice.Kind)
	assert.Equal(t, "Successfully Removed", out.Notice.Message)
	assert.Equal(t, favorites.NotFavorited, syncer.Status("u1", 8).Known)
}

func TestToggleConflictReportsAlreadyFavorite(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	target := movie(9, "Alien")

	store.EXPECT().Add(gomock.Any(), "u1", *target).
		Return(fmt.Errorf("insert favorite: %w", favorites.ErrConflict))
	store.EXPECT().Exists(gomock.Any(), "u1", int64(9)).Return(true, nil)

	out := syncer.Toggle(context.Background(), "u1", false, target)
	require.NotNil(t, out.Notice)
	assert.Equal(t, favorites.NoticeAlreadyFavorite, out.Notice.Kind)
	assert.Equal(t, "Already in favorites", out.Notice.Message)
	assert.Equal(t, favorites.State{Known: favorites.Favorited, Phase: favorites.Idle}, syncer.Status("u1", 9))
}

func TestToggleOtherErrorReportsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	target := movie(10, "Jaws")

	store.EXPECT().Add(gomock.Any(), "u1", *target).Return(errors.New("connection reset"))
	store.EXPECT().Exists(gomock.Any(), "u1", int64(10)).Return(false, errors.New("still down"))

	out := syncer.Toggle(context.Background(), "u1", false, target)
	require.NotNil(t, out.Notice)
	assert.Equal(t, favorites.NoticeFailed, out.Notice.Kind)
	assert.Equal(t, "Something went wrong", out.Notice.Message)
	assert.Equal(t, favorites.State{Known: favorites.Unknown, Phase: favorites.Idle}, syncer.Status("u1", 10))
}

func TestToggleWhilePendingIsBusy(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	target := movie(11, "Tron")

	entered := make(chan struct{})
	release := make(chan struct{})
	store.EXPECT().Add(gomock.Any(), "u1", *target).DoAndReturn(
		func(context.Context, string, models.MediaRef) error {
			close(entered)
			<-release
			return nil
		}).Times(1)
	store.EXPECT().Exists(gomock.Any(), "u1", int64(11)).Return(true, nil)

	done := make(chan favorites.Outcome, 1)
	go func() { done <- syncer.Toggle(context.Background(), "u1", false, target) }()

	<-entered
	assert.Equal(t, favorites.Pending, syncer.Status("u1", 11).Phase)
	assert.Equal(t, favorites.OutcomeBusy, syncer.Toggle(context.Background(), "u1", false, target).Result)

	close(release)
	select {
	case out := <-done:
		assert.Equal(t, favorites.OutcomeDone, out.Result)
	case <-time.After(2 * time.Second):
		t.Fatal("toggle did not finish")
	}
	assert.Equal(t, favorites.Idle, syncer.Status("u1", 11).Phase)
}

func TestToggleCancelledDiscardsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	target := movie(12, "Brazil")

	ctx, cancel := context.WithCancel(context.Background())
	store.EXPECT().Add(gomock.Any(), "u1", *target).DoAndReturn(
		func(context.Context, string, models.MediaRef) error {
			cancel()
			return nil
		})

	out := syncer.Toggle(ctx, "u1", false, target)
	assert.Equal(t, favorites.OutcomeDiscarded, out.Result)
	assert.Nil(t, out.Notice)
	assert.Equal(t, favorites.State{Known: favorites.Unknown, Phase: favorites.Idle}, syncer.Status("u1", 12))
}

func TestIsFavoritedCachesAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store, favorites.WithCache(16, time.Minute))
	ctx := context.Background()

	store.EXPECT().Exists(gomock.Any(), "u1", int64(3)).Return(true, nil).Times(1)

	for i := 0; i < 3; i++ {
		fav, err := syncer.IsFavorited(ctx, "u1", 3)
		require.NoError(t, err)
		assert.True(t, fav)
	}

	fav, err := syncer.IsFavorited(ctx, "", 3)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestListWithoutUserIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncer := favorites.NewSyncer(NewMockStore(ctrl))
	items, err := syncer.List(context.Background(), " ")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStaleReadDoesNotOverwriteToggle(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	syncer := favorites.NewSyncer(store)
	ctx := context.Background()
	target := movie(13, "Solaris")

	entered := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		store.EXPECT().Exists(gomock.Any(), "u1", int64(13)).DoAndReturn(
			func(context.Context, string, int64) (bool, error) {
				close(entered)
				<-release
				return false, nil
			}),
		store.EXPECT().Add(gomock.Any(), "u1", *target).Return(nil),
		store.EXPECT().Exists(gomock.Any(), "u1", int64(13)).Return(true, nil),
	)

	read := make(chan bool, 1)
	go func() {
		fav, _ := syncer.IsFavorited(ctx, "u1", 13)
		read <- fav
	}()
	<-entered

	out := syncer.Toggle(ctx, "u1", false, target)
	require.Equal(t, favorites.OutcomeDone, out.Result)

	close(release)
	select {
	case fav := <-read:
		assert.False(t, fav, "the slow read still answers its caller")
	case <-time.After(2 * time.Second):
		t.Fatal("read did not finish")
	}

	assert.Equal(t, favorites.State{Known: favorites.Favorited, Phase: favorites.Idle}, syncer.Status("u1", 13))
	fav, err := syncer.IsFavorited(ctx, "u1", 13)
	require.NoError(t, err)
	assert.True(t, fav)
}
