// Package pipeline runs a full conversion of the source dataset into the
// output tree, one asset at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"scenedb-tools/pkg/compress"
	"scenedb-tools/pkg/config"
	"scenedb-tools/pkg/imagefetch"
	"scenedb-tools/pkg/layout"
	"scenedb-tools/pkg/logging"
	"scenedb-tools/pkg/metadata"
	"scenedb-tools/pkg/scan"
	"scenedb-tools/pkg/textures"
)

const separator = "--------------------------------------"

// Summary reports what a run did.
type Summary struct {
	Total            int
	Oversized        int
	AlreadyConverted int
	Pending          int
	Converted        int
	Failed           []string
	ImagesDownloaded int
	ImagesMissing    int
	Metadata         metadata.Result
}

type Pipeline struct {
	cfg     config.Config
	log     *logging.Session
	logger  zerolog.Logger
	dataset scan.Dataset
	tree    layout.Tree

	textures   *textures.Copier
	merger     *metadata.Merger
	compressor *compress.Compressor
	images     *imagefetch.Fetcher
	metrics    *Metrics
}

// New wires every component from cfg. Progress lines go through sess.
func New(cfg config.Config, sess *logging.Session) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := metadata.LookupEncoding(cfg.TableEncoding)
	if err != nil {
		return nil, err
	}

	logger := sess.Logger
	ds := scan.NewDataset(cfg.SourceRoot)
	tree := layout.New(cfg.OutputRoot)

	images, err := imagefetch.New(cfg.ImageBaseURL, cfg.ImageRequestsPerSecond, tree,
		logger.With().Str("component", "images").Logger())
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		log:        sess,
		logger:     logger,
		dataset:    ds,
		tree:       tree,
		textures:   textures.NewCopier(ds.TexturesDir(), tree.TextureDir, logger.With().Str("component", "textures").Logger()),
		merger:     metadata.NewMerger(ds, tree, enc, logger.With().Str("component", "metadata").Logger()),
		compressor: compress.New(ds, tree, cfg.ConverterDir, cfg.ConverterCommand, cfg.ConverterArgs, logger.With().Str("component", "obj2utf8").Logger()),
		images:     images,
		metrics:    NewMetrics(),
	}, nil
}

// Metrics returns the run metrics.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// Run executes the conversion. Converter failures roll back the affected
// asset and the run continues; any other error stops the run.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var sum Summary

	p.log.Write("Ensuring directories exist...")
	if err := p.tree.EnsureTree(); err != nil {
		return sum, err
	}

	p.log.Write("Copying textures...")
	tst, err := p.textures.Copy()
	if err != nil {
		return sum, err
	}
	p.logger.Debug().Int("copied", tst.Copied).Int("skipped", tst.Skipped).Msg("textures mirrored")

	ids, err := p.dataset.ListAssetIDs()
	if err != nil {
		return sum, err
	}
	sum.Total = len(ids)

	oversizedIDs, err := p.dataset.Oversized(ids, p.cfg.MaxOBJSize)
	if err != nil {
		return sum, err
	}
	oversized := scan.NewSet(oversizedIDs)
	sum.Oversized = len(oversizedIDs)
	p.metrics.assets.WithLabelValues("oversized").Add(float64(len(oversizedIDs)))

	p.log.Write("Converting metadata...")
	if sum.Metadata, err = p.merger.Merge(oversized); err != nil {
		return sum, err
	}

	convertedIDs, err := scan.Converted(p.tree)
	if err != nil {
		return sum, err
	}
	converted := scan.NewSet(convertedIDs)
	for _, id := range ids {
		if converted.Has(id) && !oversized.Has(id) {
			sum.AlreadyConverted++
		}
	}
	p.metrics.assets.WithLabelValues("skipped").Add(float64(sum.AlreadyConverted))

	pending := scan.Pending(ids, converted, oversized)
	sum.Pending = len(pending)

	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		p.log.Write(separator)
		p.log.Write(fmt.Sprintf("Converting model %s...", id))

		if err := p.convert(ctx, id, &sum); err != nil {
			return sum, err
		}
	}

	p.metrics.duration.Set(time.Since(start).Seconds())
	if p.cfg.MetricsFile != "" {
		if err := p.metrics.WriteTextfile(p.cfg.MetricsFile); err != nil {
			return sum, fmt.Errorf("write metrics: %w", err)
		}
	}
	p.logger.Info().
		Int("total", sum.Total).
		Int("converted", sum.Converted).
		Int("failed", len(sum.Failed)).
		Int("oversized", sum.Oversized).
		Int("already_converted", sum.AlreadyConverted).
		Dur("elapsed", time.Since(start)).
		Msg("conversion finished")
	return sum, nil
}

// convert runs the compressor and, if it succeeded, the image fetch for id.
func (p *Pipeline) convert(ctx context.Context, id string, sum *Summary) error {
	_, err := p.compressor.Compress(ctx, id)
	if errors.Is(err, compress.ErrConverterFailed) {
		// The asset was rolled back; fetching its image would leave an orphan.
		sum.Failed = append(sum.Failed, id)
		p.metrics.assets.WithLabelValues("failed").Inc()
		return nil
	}
	if err != nil {
		return err
	}
	sum.Converted++
	p.metrics.assets.WithLabelValues("converted").Inc()

	outcome, err := p.images.Fetch(ctx, id)
	if err != nil {
		return err
	}
	p.metrics.images.WithLabelValues(outcome.String()).Inc()
	switch outcome {
	case imagefetch.Downloaded:
		sum.ImagesDownloaded++
	case imagefetch.Unavailable:
		sum.ImagesMissing++
	}
	return nil
}
