package quote

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/asapobra/quote-service/internal/catalog"
)

// Options bound the quote parameters. Zero values fall back to the
// compiled defaults.
type Options struct {
	DefaultRadiusKm   float64
	DefaultStoreLimit int
	MaxStoreLimit     int
}

func (o Options) withDefaults() Options {
	if o.DefaultRadiusKm <= 0 {
		o.DefaultRadiusKm = 50
	}
	if o.DefaultStoreLimit <= 0 {
		o.DefaultStoreLimit = 3
	}
	if o.MaxStoreLimit <= 0 {
		o.MaxStoreLimit = 10
	}
	return o
}

// Service runs the quote pipeline: resolve listings, annotate with store
// distance, select stores, build the matrix.
type Service struct {
	source CatalogSource
	opts   Options
	logger zerolog.Logger
}

// NewService creates a quote service on top of a catalog source.
func NewService(source CatalogSource, opts Options) *Service {
	return &Service{
		source: source,
		opts:   opts.withDefaults(),
		logger: log.With().Str("component", "quote").Logger(),
	}
}

// Quote produces a comparison matrix for the request. Catalog failures do
// not surface as errors: the caller gets an empty matrix with reason
// upstream_error, since a degraded answer beats a 500 for a buyer mid
// conversation. The returned error only reports internal contract bugs.
func (s *Service) Quote(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	var (
		listings  []catalog.Listing
		stores    []catalog.Store
		requested []catalog.Material
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listings, err = s.source.ResolveListings(gctx, catalog.ListingFilter{
			MaterialIDs: req.MaterialIDs,
			Category:    req.Category,
			Terms:       req.Terms,
		})
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = s.source.ListStores(gctx)
		return err
	})
	if len(req.MaterialIDs) > 0 {
		g.Go(func() error {
			var err error
			requested, err = s.source.GetMaterials(gctx, req.MaterialIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("catalog read failed, returning degraded quote")
		recordQuote(ReasonUpstreamError, 0, 0, start)
		return &Result{Matrix: &Matrix{Columns: []Column{}, Rows: []Row{}}, Reason: ReasonUpstreamError}, nil
	}

	annotated := Annotate(listings, stores, req.Location)

	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.opts.DefaultRadiusKm
	}
	limit := req.StoreLimit
	if limit <= 0 {
		limit = s.opts.DefaultStoreLimit
	}
	if limit > s.opts.MaxStoreLimit {
		limit = s.opts.MaxStoreLimit
	}

	selected := SelectStores(annotated, req.Location != nil, radius, limit)
	if len(selected) == 0 {
		reason := ReasonOK
		if len(listings) > 0 && req.Location != nil {
			// Matches exist but every store is outside the radius or has
			// no usable location.
			reason = ReasonOutOfRange
		}
		recordQuote(reason, len(listings), 0, start)
		return &Result{Matrix: &Matrix{Columns: []Column{}, Rows: []Row{}}, Reason: reason}, nil
	}

	matrix, err := BuildMatrix(BuildInput{
		Listings:    annotated,
		StoreIDs:    selected,
		Requested:   requested,
		Suggestions: req.Suggestions,
		Order:       req.Order,
	})
	if err != nil {
		recordQuote(ReasonUpstreamError, len(listings), len(selected), start)
		return nil, err
	}

	s.logger.Info().
		Int("listings", len(listings)).
		Int("stores", len(matrix.Columns)).
		Int("rows", len(matrix.Rows)).
		Dur("took", time.Since(start)).
		Msg("quote built")

	recordQuote(ReasonOK, len(listings), len(matrix.Columns), start)
	return &Result{Matrix: matrix, Reason: ReasonOK}, nil
}

// ContactLink renders the deep link the buyer uses to reach a store.
// An empty handle yields no link rather than a dangling scheme.
func ContactLink(handle string) string {
	if handle == "" {
		return ""
	}
	return "contact://" + handle
}
