// Package factory builds and caches evaluators per (set, member).
//
// Construction of a key runs at most once at a time: Get and Reload calls for
// the same key share one singleflight slot, and the finished result
// (evaluator or error) is cached for the life of the Factory. Failures stay
// cached until Reload or Forget is called for the key. A failed load never
// replaces a cached evaluator.
package factory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/scientificLibs/PDFxTMD/pdf"
	_ "github.com/scientificLibs/PDFxTMD/pdf/extrap" // registers pdf.NewExtrapolatorFunc
	"github.com/scientificLibs/PDFxTMD/pdf/info"
	_ "github.com/scientificLibs/PDFxTMD/pdf/interp" // registers pdf.NewInterpolatorFunc
)

// Key identifies one member of one set.
type Key struct {
	Set    string
	Member int
}

func (k Key) String() string { return fmt.Sprintf("%s/%d", k.Set, k.Member) }

// Loader produces the grid and metadata for a key.
type Loader func(ctx context.Context, key Key) (*pdf.Grid, *info.Info, error)

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits     int64
	Misses   int64
	Loads    int64
	Failures int64
	Entries  int
}

type settings struct {
	locator *Locator
	loader  Loader
	options *pdf.Options
	bundle  *pdf.Bundle
}

// Option configures a Factory.
type Option func(*settings)

// WithPaths searches the given directories before the defaults.
func WithPaths(paths ...string) Option {
	return func(s *settings) { s.locator = NewLocator(paths...) }
}

// WithLocator replaces the locator used by the default loader and by Info.
func WithLocator(l *Locator) Option {
	return func(s *settings) { s.locator = l }
}

// WithLoader replaces the default locator-based loader.
func WithLoader(l Loader) Option {
	return func(s *settings) { s.loader = l }
}

// WithOptions fixes the evaluator options for every key, ignoring the
// Interpolator/Extrapolator keys of info files.
func WithOptions(o pdf.Options) Option {
	return func(s *settings) { s.options = &o }
}

// WithBundle derives evaluator options from a YAML bundle.
func WithBundle(b *pdf.Bundle) Option {
	return func(s *settings) { s.bundle = b }
}

type entry[K pdf.Kind] struct {
	ev  *pdf.Evaluator[K]
	err error
}

// result is what one construction hands to every caller sharing it: the
// entry now cached for the key and the one just built.
type result[K pdf.Kind] struct {
	cached, built *entry[K]
	fresh         bool // built by Reload
}

// Factory caches evaluators of kind K.
type Factory[K pdf.Kind] struct {
	settings
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[Key]*entry[K]
	gen     map[Key]uint64 // bumped by Forget
	infos   sync.Map // set name -> *info.Info

	hits, misses, loads, failures atomic.Int64
}

// New returns an empty Factory.
func New[K pdf.Kind](opts ...Option) *Factory[K] {
	f := &Factory[K]{entries: make(map[Key]*entry[K]), gen: make(map[Key]uint64)}
	for _, o := range opts {
		o(&f.settings)
	}
	if f.locator == nil {
		f.locator = NewLocator()
	}
	if f.loader == nil {
		f.loader = f.locator.Load
	}
	return f
}

// NewCollinear returns a Factory of two-axis PDF evaluators.
func NewCollinear(opts ...Option) *Factory[pdf.Collinear] { return New[pdf.Collinear](opts...) }

// NewTMD returns a Factory of three-axis TMD evaluators.
func NewTMD(opts ...Option) *Factory[pdf.TMD] { return New[pdf.TMD](opts...) }

// Locator returns the factory's locator.
func (f *Factory[K]) Locator() *Locator { return f.locator }

func (f *Factory[K]) lookup(key Key) (*entry[K], bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.entries[key]
	return e, ok
}

// Get returns the shared evaluator for (set, member), loading it on first use.
// If ctx ends first Get returns ctx.Err(); the load keeps running for the
// other callers and its result is still cached.
func (f *Factory[K]) Get(ctx context.Context, set string, member int) (*pdf.Evaluator[K], error) {
	key := Key{Set: set, Member: member}
	if e, ok := f.lookup(key); ok {
		f.hits.Add(1)
		return e.ev, e.err
	}
	f.misses.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := f.load(ctx, key, func() *result[K] {
		if e, ok := f.lookup(key); ok {
			return &result[K]{cached: e, built: e}
		}
		gen := f.generation(key)
		e := f.build(context.WithoutCancel(ctx), key)
		return &result[K]{cached: f.store(key, gen, e), built: e}
	})
	if err != nil {
		return nil, err
	}
	return r.cached.ev, r.cached.err
}

// Reload constructs key afresh and swaps it into the cache. Callers still
// holding the previous evaluator keep a valid object. If the new load fails
// the previous successful entry, if any, is kept and the error is returned.
// A Get already loading the key is waited for first.
func (f *Factory[K]) Reload(ctx context.Context, set string, member int) (*pdf.Evaluator[K], error) {
	key := Key{Set: set, Member: member}
	for {
		r, err := f.load(ctx, key, func() *result[K] {
			f.infos.Delete(key.Set)
			gen := f.generation(key)
			e := f.build(context.WithoutCancel(ctx), key)
			return &result[K]{cached: f.store(key, gen, e), built: e, fresh: true}
		})
		if err != nil {
			return nil, err
		}
		if r.fresh {
			return r.built.ev, r.built.err
		}
	}
}

// Forget drops the cached entry for (set, member) so the next Get loads it
// again. A load already in flight finishes but its result is not cached.
func (f *Factory[K]) Forget(set string, member int) bool {
	key := Key{Set: set, Member: member}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	delete(f.entries, key)
	f.gen[key]++
	return ok
}

// load runs fn in the singleflight slot of key, or joins the call already
// running there.
func (f *Factory[K]) load(ctx context.Context, key Key, fn func() *result[K]) (*result[K], error) {
	ch := f.group.DoChan(key.String(), func() (any, error) {
		return fn(), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val.(*result[K]), nil
	}
}

func (f *Factory[K]) generation(key Key) uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.gen[key]
}

// store caches e unless key was forgotten since gen was read or e is a
// failure and a working evaluator is cached. It returns the entry now cached.
func (f *Factory[K]) store(key Key, gen uint64, e *entry[K]) *entry[K] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen[key] != gen {
		return e
	}
	if old, ok := f.entries[key]; ok && old.err == nil && e.err != nil {
		return old
	}
	f.entries[key] = e
	return e
}

func (f *Factory[K]) build(ctx context.Context, key Key) *entry[K] {
	f.loads.Add(1)
	start := time.Now()
	logrus.Debugf("loading %s", key)
	ev, err := f.construct(ctx, key)
	if err != nil {
		f.failures.Add(1)
		logrus.Warnf("loading %s failed: %v", key, err)
		return &entry[K]{err: err}
	}
	logrus.Infof("loaded %s (%v, %v) in %v", key, ev.Method(), ev.Policy(), time.Since(start))
	return &entry[K]{ev: ev}
}

func (f *Factory[K]) construct(ctx context.Context, key Key) (*pdf.Evaluator[K], error) {
	var k K
	g, in, err := f.loader(ctx, key)
	if err != nil {
		return nil, err
	}
	if in != nil && in.Arity() != k.Arity() {
		return nil, pdf.Errorf(pdf.KindInitialization, "%q is a %d-axis set, factory builds %s evaluators", key.Set, in.Arity(), k.Name())
	}
	opts, err := f.evaluatorOptions(in, k.Arity())
	if err != nil {
		return nil, err
	}
	return pdf.NewEvaluator[K](g, opts)
}

func (f *Factory[K]) evaluatorOptions(in *info.Info, arity int) (pdf.Options, error) {
	switch {
	case f.options != nil:
		return *f.options, nil
	case f.bundle != nil:
		return f.bundle.Options(arity)
	case in != nil:
		return in.Options()
	}
	return pdf.DefaultOptions(arity), nil
}

// Info returns the cached metadata of set.
func (f *Factory[K]) Info(set string) (*info.Info, error) {
	if v, ok := f.infos.Load(set); ok {
		return v.(*info.Info), nil
	}
	in, err := f.locator.Info(set)
	if err != nil {
		return nil, err
	}
	v, _ := f.infos.LoadOrStore(set, in)
	return v.(*info.Info), nil
}

// Eval evaluates flavor fl of (set, member) at pt.
func (f *Factory[K]) Eval(ctx context.Context, set string, member int, fl pdf.Flavor, pt ...float64) (float64, error) {
	ev, err := f.Get(ctx, set, member)
	if err != nil {
		return 0, err
	}
	return ev.Eval(fl, pt...)
}

// Stats returns a snapshot of the cache counters.
func (f *Factory[K]) Stats() Stats {
	f.mu.RLock()
	n := len(f.entries)
	f.mu.RUnlock()
	return Stats{
		Hits:     f.hits.Load(),
		Misses:   f.misses.Load(),
		Loads:    f.loads.Load(),
		Failures: f.failures.Load(),
		Entries:  n,
	}
}
