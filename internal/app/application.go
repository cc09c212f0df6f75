// Package app ties the lifecycle engine's services together.
package app

import (
	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/remote"
	"github.com/seda-works/marketplace_layer/internal/app/services/lifecycle"
	"github.com/seda-works/marketplace_layer/internal/app/services/projects"
	"github.com/seda-works/marketplace_layer/internal/app/services/scopedraft"
	"github.com/seda-works/marketplace_layer/internal/app/storage"
	"github.com/seda-works/marketplace_layer/internal/app/storage/memory"
	"github.com/seda-works/marketplace_layer/pkg/logger"
)

// Stores encapsulates shadow-store dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Projects   storage.ProjectStore
	Milestones storage.MilestoneStore
}

// Options configures Application construction.
type Options struct {
	Adapter *remote.Client
	Stores  Stores
	Drafts  scopedraft.DraftStore
	Log     *logger.Logger
}

// Application exposes the wired services to the controller layer.
type Application struct {
	log *logger.Logger

	Lifecycle   *lifecycle.Service
	Projects    *projects.Service
	ScopeDrafts *scopedraft.Service
}

// New wires the engine. The adapter client is required; everything else has
// an in-memory default.
func New(opts Options) *Application {
	log := opts.Log
	if log == nil {
		log = logger.NewDefault("app")
	}

	stores := opts.Stores
	if stores.Projects == nil || stores.Milestones == nil {
		mem := memory.New()
		if stores.Projects == nil {
			stores.Projects = mem
		}
		if stores.Milestones == nil {
			stores.Milestones = mem
		}
	}

	draftStore := opts.Drafts
	if draftStore == nil {
		draftStore = scopedraft.NewMemoryStore()
	}

	drafts := scopedraft.New(draftStore, opts.Adapter, log.WithField("service", "scopedraft"))
	aggregator := projects.New(opts.Adapter, log.WithField("service", "projects"))
	workflow := lifecycle.New(opts.Adapter, stores.Projects, stores.Milestones, drafts, log.WithField("service", "lifecycle"))

	return &Application{
		log:         log,
		Lifecycle:   workflow,
		Projects:    aggregator,
		ScopeDrafts: drafts,
	}
}

// LogInventory writes one line per wired service.
func (a *Application) LogInventory() {
	for _, d := range []service.Descriptor{
		a.Lifecycle.Describe(),
		a.Projects.Describe(),
		a.ScopeDrafts.Describe(),
	} {
		a.log.WithField("service", d.Name).WithField("layer", string(d.Layer)).Info("service wired")
	}
}
