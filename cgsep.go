package cgsep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/cgsep/aggregate"
	"github.com/hupe1980/cgsep/attribute"
	"github.com/hupe1980/cgsep/explain"
	"github.com/hupe1980/cgsep/filter"
	"github.com/hupe1980/cgsep/graph"
	"github.com/hupe1980/cgsep/risk"
	"github.com/hupe1980/cgsep/separability"
)

// Engine runs explanation and separability scoring.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	opts options
}

// New creates an Engine.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: o}, nil
}

// ExplainAndScore is a convenience wrapper around New and Engine.ExplainAndScore.
func ExplainAndScore(ctx context.Context, req *Request, optFns ...Option) (*Report, error) {
	e, err := New(optFns...)
	if err != nil {
		return nil, err
	}
	return e.ExplainAndScore(ctx, req)
}

// ExplainAndScore explains every graph of the request and scores class
// separability of the pooled attributes.
//
// Importance is computed for all graphs first. Misclassified graphs are then
// optionally excluded from scoring but stay in the annotated output. Any failure
// aborts the run; no partial report is returned.
func (e *Engine) ExplainAndScore(ctx context.Context, req *Request) (*Report, error) {
	r, err := e.run(ctx, req)
	if err != nil {
		return nil, translateError(err)
	}
	return r, nil
}

func (e *Engine) run(ctx context.Context, req *Request) (*Report, error) {
	o := &e.opts
	log := o.logger

	if req == nil {
		return nil, configError("Request", "is required", nil)
	}
	kind, err := explain.ParseKind(string(req.Explainer))
	if err != nil {
		return nil, err
	}
	numClasses, err := req.validate()
	if err != nil {
		return nil, err
	}

	graphs := req.Graphs
	if o.evaluationSplit && len(graphs) > 0 {
		split, set, err := graph.EvaluationSet(graphs)
		if err != nil {
			return nil, err
		}
		log.DebugContext(ctx, "evaluation split selected", "split", split.String(), "graphs", len(set))
		graphs = set
	}
	for _, g := range graphs {
		if g == nil {
			continue
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}

	// Importance over every graph.
	start := time.Now()
	annotated, err := explain.Compute(ctx, graphs, req.Model, kind,
		explain.WithSeed(o.seed),
		explain.WithSamples(o.samples),
		explain.WithKeepProbability(o.keepProbability),
		explain.WithController(o.controller),
	)
	o.metricsCollector.RecordImportance(time.Since(start), err)
	var empty *explain.EmptyGraphError
	if errors.As(err, &empty) {
		log = log.WithGraph(empty.Graph)
	}
	log.LogImportance(ctx, string(kind), len(graphs), err)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Explainer:  kind,
		ClassNames: req.ClassNames,
		Graphs:     annotated,
	}

	// Visualization sees every annotated graph, pruned or not.
	vis, err := e.visualization(req, annotated)
	if err != nil {
		return nil, err
	}
	report.Visualization = vis
	if vis != nil && o.visualizer != nil {
		if err := o.visualizer.Visualize(ctx, vis); err != nil {
			return nil, fmt.Errorf("visualize: %w", err)
		}
	}

	// Optional pruning of misclassified graphs.
	scored := annotated
	if req.PruneMisclassified || o.classificationReport {
		p, err := filter.Run(ctx, annotated, req.Model, o.controller)
		if err != nil {
			return nil, err
		}
		o.metricsCollector.RecordPartition(len(p.Correct), len(p.Incorrect))
		log.LogPrune(ctx, len(p.Correct), len(p.Incorrect))
		for i, g := range annotated {
			if p.Predictions[i] != g.Label {
				log.WithGraph(g.Name).DebugContext(ctx, "misclassified", "label", g.Label, "prediction", p.Predictions[i])
			}
		}

		if report.Classification, err = filter.NewReport(filter.Labels(annotated), p.Predictions, numClasses, req.ClassNames); err != nil {
			return nil, err
		}
		if req.PruneMisclassified {
			scored = p.Correct
			report.Pruned = p.IncorrectNames()
		}
	}
	for _, g := range scored {
		report.Scored = append(report.Scored, g.Name)
	}

	// Pooling.
	units, err := aggregate.Units(scored, req.Attributes, o.mergeROIs)
	if err != nil {
		return nil, err
	}
	names := req.Attributes.Names()
	pooled, err := aggregate.Pool(units, names, o.selection)
	if err != nil {
		return nil, err
	}
	report.Pooled = pooled
	report.Classes = pooled.Classes
	report.Attributes = pooled.Names
	if dropped := numClasses - len(pooled.Classes); dropped > 0 {
		log.WarnContext(ctx, "classes without pooled values excluded", "classes", pooled.Classes, "dropped", dropped)
	}

	// Scoring.
	rm := req.Risk
	if rm == nil {
		rm = risk.New(numClasses, o.ordinalRisk)
	}
	scorer, err := separability.NewScorer(pooled, separability.Config{
		Representation: o.representation,
		BinWidth:       o.binWidth,
		MaxCells:       o.maxCells,
		Metric:         o.metric,
		Risk:           rm,
		Prior:          req.PathoPrior,
		ClassNames:     req.ClassNames,
	})
	if err != nil {
		return nil, err
	}

	if report.Concept, err = scorer.ConceptTable(ctx, req.Grouping); err != nil {
		return nil, err
	}
	if report.Attribute, err = scorer.AttributeTable(ctx); err != nil {
		return nil, err
	}
	if report.KBest, err = e.kBest(ctx, scorer, len(names)); err != nil {
		return nil, err
	}

	report.Importances, err = unify(annotated)
	if err != nil {
		return nil, err
	}

	if o.exporter != nil {
		start := time.Now()
		n, err := o.exporter.Export(ctx, report)
		o.metricsCollector.RecordExport(n, time.Since(start), err)
		log.LogExport(ctx, n, err)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}

	return report, nil
}

func (e *Engine) kBest(ctx context.Context, s *separability.Scorer, universe int) ([]separability.KBestTable, error) {
	o := &e.opts
	maxK := min(o.k, universe)
	if maxK < 1 {
		return nil, nil
	}
	ks := make([]int, maxK)
	for i := range ks {
		ks[i] = i + 1
	}

	start := time.Now()
	tables, err := s.KBest(ctx, ks, separability.SearchOptions{
		Objective:  o.objective,
		MaxSubsets: o.maxSubsets,
		Threshold:  o.threshold,
		TopN:       o.topN,
		Controller: o.controller,
	})
	evaluated := 0
	for _, t := range tables {
		for _, r := range t.Results {
			evaluated += r.Evaluated
		}
	}
	o.metricsCollector.RecordSubsetSearch(maxK, evaluated, time.Since(start))
	o.logger.WithK(maxK).LogSearch(ctx, len(s.Pairs()), maxK, evaluated, err)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		plog := o.logger.WithPair(t.Pair)
		for _, r := range t.Rows {
			if r.Rank == 1 {
				plog.DebugContext(ctx, "best subset", "k", r.K, "subset", r.Subset, "score", r.Score)
			}
		}
	}
	return tables, nil
}

func (e *Engine) visualization(req *Request, annotated []*graph.Graph) (*Visualization, error) {
	ok, err := req.visualize()
	if err != nil || !ok {
		return nil, err
	}

	byName := make(map[string]*graph.Graph, len(annotated))
	for _, g := range annotated {
		byName[g.Name] = g
	}
	var selected []*graph.Graph
	for _, name := range req.GraphNames {
		g, ok := byName[name]
		if !ok {
			return nil, configError("GraphNames", "unknown graph "+name, nil)
		}
		selected = append(selected, g)
	}

	v := &Visualization{OutputDir: req.OutputDir}
	for _, n := range req.FeatureNames {
		v.FeatureNames = append(v.FeatureNames, attribute.StripPrefix(n))
	}
	if e.opts.mergeROIs {
		keys, groups := graph.BySpecimen(selected)
		for _, k := range keys {
			v.Groups = append(v.Groups, SpecimenGraphs{Specimen: k, Graphs: groups[k]})
		}
	} else {
		for _, g := range selected {
			v.Groups = append(v.Groups, SpecimenGraphs{Specimen: g.Specimen, Graphs: []*graph.Graph{g}})
		}
	}
	return v, nil
}

// unify averages importance per cell id when every graph carries cell ids.
func unify(graphs []*graph.Graph) (map[int64]float64, error) {
	for _, g := range graphs {
		if len(g.NodeIDs) == 0 {
			return nil, nil
		}
	}
	return explain.Unify(graphs)
}
