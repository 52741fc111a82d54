package testutil

import (
	"context"

	"github.com/mkuznetsov/filmsocial/engine/internal/controller/feed"
	"github.com/mkuznetsov/filmsocial/engine/internal/controller/likes"
	"github.com/mkuznetsov/filmsocial/engine/internal/controller/recommend"
	"github.com/mkuznetsov/filmsocial/engine/internal/controller/review"
	"github.com/mkuznetsov/filmsocial/engine/internal/controller/social"
	"github.com/mkuznetsov/filmsocial/engine/internal/repository/memory"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// LikeIngester matches the stream consumer the likes controller reads from.
type LikeIngester interface {
	Ingest(ctx context.Context) (chan model.LikeEvent, error)
}

// Engine bundles the controllers over a shared in-memory store, to be used in
// tests.
type Engine struct {
	Store     *memory.Repository
	Feed      *feed.Controller
	Social    *social.Controller
	Likes     *likes.Controller
	Recommend *recommend.Controller
	Review    *review.Controller
}

// NewTestEngine wires every controller over a fresh in-memory store.
func NewTestEngine() *Engine {
	logger := zap.NewNop()
	repo := memory.New()
	feedCtrl := feed.New(repo, logger)
	return &Engine{
		Store:     repo,
		Feed:      feedCtrl,
		Social:    social.New(repo, feedCtrl, logger),
		Likes:     likes.New(repo, feedCtrl, nil, tally.NoopScope, logger),
		Recommend: recommend.New(repo, logger),
		Review:    review.New(repo, feedCtrl, logger),
	}
}

// NewTestLikesController builds a likes controller over the engine's store
// with a caller-supplied ingester, for ingestion tests.
func NewTestLikesController(e *Engine, ingester LikeIngester) *likes.Controller {
	return likes.New(e.Store, e.Feed, ingester, tally.NoopScope, zap.NewNop())
}
