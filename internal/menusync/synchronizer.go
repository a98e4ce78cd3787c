package menusync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/menu"
	"github.com/dvinay/custom-search-shortcuts/internal/parser"
	"github.com/dvinay/custom-search-shortcuts/internal/store"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// activationQueueSize bounds clicks waiting for the event loop
const activationQueueSize = 64

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRootTitle sets the label of the root node
func WithRootTitle(title string) Option {
	return func(s *Synchronizer) {
		if title != "" {
			s.rootTitle = title
		}
	}
}

// Synchronizer rebuilds the menu on configuration changes and handles clicks
type Synchronizer struct {
	store     store.Store
	menu      MenuHost
	tabs      TabHost
	logger    *zap.Logger
	rootTitle string

	// rebuild holds at most one pending rebuild; later changes coalesce
	// into it since a rebuild always reads the latest configuration
	rebuild     chan struct{}
	activations chan Activation
}

// New creates a synchronizer. Call Run to start it.
func New(st store.Store, menuHost MenuHost, tabHost TabHost, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:       st,
		menu:        menuHost,
		tabs:        tabHost,
		logger:      zap.NewNop(),
		rootTitle:   menu.DefaultRootTitle,
		rebuild:     make(chan struct{}, 1),
		activations: make(chan Activation, activationQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run subscribes to the store, builds the menu and handles queued events
// until ctx is done
func (s *Synchronizer) Run(ctx context.Context) error {
	unsubscribe := s.store.OnChange(s.Notify)
	defer unsubscribe()

	if err := s.Rebuild(ctx); err != nil {
		s.logger.Warn("initial menu build failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("menu synchronizer stopped")
			return nil

		case <-s.rebuild:
			if err := s.Rebuild(ctx); err != nil {
				s.logger.Warn("menu rebuild failed", zap.Error(err))
			}

		case a := <-s.activations:
			if err := s.HandleActivation(ctx, a); err != nil {
				s.logger.Warn("activation failed", zap.String("id", a.ActivatedID), zap.Error(err))
			}
		}
	}
}

// Relevant reports whether a change affects the menu
func Relevant(change types.Change) bool {
	return change.Has(types.KeyTemplates) ||
		change.Has(types.KeyVariables) ||
		change.Has(types.KeyEnvironments)
}

// Notify queues a rebuild for a relevant change. Safe from any goroutine.
func (s *Synchronizer) Notify(change types.Change) {
	if !Relevant(change) {
		return
	}
	select {
	case s.rebuild <- struct{}{}:
	default:
		// A rebuild is already pending
	}
}

// Activate queues a click. It reports false when the queue is full.
func (s *Synchronizer) Activate(a Activation) bool {
	select {
	case s.activations <- a:
		return true
	default:
		s.logger.Warn("activation dropped, queue full", zap.String("id", a.ActivatedID))
		return false
	}
}

// Rebuild replaces the whole menu with one built from a fresh snapshot.
// When the store cannot be read the current menu is left as it is.
func (s *Synchronizer) Rebuild(ctx context.Context) error {
	snap, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := s.menu.RemoveAllNodes(ctx); err != nil {
		return fmt.Errorf("failed to clear menu: %w", err)
	}

	nodes := menu.BuildTree(snap, s.rootTitle)
	var errs []error
	for _, node := range nodes {
		if err := s.menu.CreateNode(ctx, node); err != nil {
			s.logger.Warn("failed to create menu node", zap.String("id", node.ID), zap.Error(err))
			errs = append(errs, err)
		}
	}

	s.logger.Debug("menu rebuilt",
		zap.Int("templates", len(snap.Templates)),
		zap.Int("environments", len(snap.Environments)),
		zap.Int("nodes", len(nodes)))
	return errors.Join(errs...)
}

// HandleActivation routes one click
func (s *Synchronizer) HandleActivation(ctx context.Context, a Activation) error {
	id := menu.Parse(a.ActivatedID)

	switch id.Kind {
	case menu.KindManage:
		return s.tabs.OpenManagementSurface(ctx, nil)

	case menu.KindAddCurrentPage:
		return s.addCurrentPage(ctx)

	case menu.KindTemplate, menu.KindTemplateEnv:
		return s.openTemplate(ctx, id, a.SelectedText)

	default:
		// Root, branches, separators and anything unrecognized
		s.logger.Debug("ignoring activation", zap.String("id", a.ActivatedID))
		return nil
	}
}

// addCurrentPage opens the management surface prefilled with the active page
func (s *Synchronizer) addCurrentPage(ctx context.Context) error {
	tab, err := s.tabs.QueryActiveTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to query active tab: %w", err)
	}
	if tab.URL == "" || s.tabs.IsOwnSurface(tab.URL) {
		s.logger.Debug("not adding own or empty page", zap.String("url", tab.URL))
		return nil
	}

	name := strings.TrimSpace(tab.Title)
	if name == "" {
		name = DefaultPrefillName
	}
	params := url.Values{}
	params.Set(PrefillNameParam, name)
	params.Set(PrefillURLParam, tab.URL)
	return s.tabs.OpenManagementSurface(ctx, params)
}

// openTemplate resolves a leaf against a fresh snapshot and opens the result
func (s *Synchronizer) openTemplate(ctx context.Context, id menu.ItemID, selection string) error {
	snap, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	t, ok := snap.Template(id.TemplateID)
	if !ok {
		s.logger.Debug("template no longer exists", zap.String("template", id.TemplateID))
		return nil
	}

	envID := id.EnvironmentID
	if id.Kind == menu.KindTemplateEnv {
		if _, ok := snap.Environment(envID); !ok {
			s.logger.Debug("environment no longer exists", zap.String("environment", envID))
			return nil
		}
	}

	resolved := parser.Resolve(t.URL, envID, snap.Variables, snap.Environments, selection)
	s.logger.Info("opening search",
		zap.String("template", t.Name),
		zap.String("environment", envID),
		zap.String("url", resolved))
	return s.tabs.OpenNewTab(ctx, resolved)
}
