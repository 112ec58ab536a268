package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/ulikoehler/slinktree/pkg/builder"
	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/source"
)

// countingSource records how often each file is read.
type countingSource struct {
	inner source.Source
	mu    sync.Mutex
	reads map[string]int
	delay time.Duration
	slow  map[string]time.Duration // per-file delay, overrides delay
	fail  map[string]error
}

func newCounting(files map[string]string) *countingSource {
	m := fstest.MapFS{}
	for name, body := range files {
		m[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return &countingSource{inner: source.FromFS(m), reads: make(map[string]int)}
}

func (s *countingSource) ReadFile(name string) ([]byte, error) {
	s.mu.Lock()
	s.reads[name]++
	d := s.delay
	if v, ok := s.slow[name]; ok {
		d = v
	}
	s.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
	if err, ok := s.fail[name]; ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return s.inner.ReadFile(name)
}

const exampleRoot = `<System>
  <Block BlockType="SubSystem" Name="B1" SID="1">
    <PortCounts in="1"/>
    <System Ref="sub.xml"/>
  </Block>
  <Block BlockType="Constant" Name="B2" SID="2">
    <PortProperties><Port Type="out" Index="1"><P Name="Name">P1</P></Port></PortProperties>
  </Block>
  <Line>
    <P Name="Src">2#out:1</P>
    <P Name="Dst">1#in:1</P>
  </Line>
</System>`

const exampleSub = `<System>
  <Block BlockType="Inport" Name="In1" SID="1"><PortCounts out="1"/></Block>
  <Block BlockType="Terminator" Name="T" SID="2"><PortCounts in="1"/></Block>
  <Line><P Name="Src">1#out:1</P><P Name="Dst">2#in:1</P></Line>
</System>`

func modes() map[string]Options {
	return map[string]Options{
		"sequential": {},
		"concurrent": {Workers: 4},
	}
}

func TestResolveExample(t *testing.T) {
	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			src := newCounting(map[string]string{
				"m/root.xml": exampleRoot,
				"m/sub.xml":  exampleSub,
			})
			doc, err := New(src, opts).Resolve(context.Background(), "m/root.xml")
			require.NoError(t, err)

			root := doc.Root
			require.Len(t, root.Blocks, 2)
			assert.Equal(t, "m/root.xml", root.Path)
			assert.Equal(t, "m/root.xml", doc.Source)
			assert.Equal(t, model.CurrentFormatVersion, doc.FormatVersion)

			b1 := root.Blocks[0]
			require.NotNil(t, b1.System, "B1 should own a nested system")
			assert.Equal(t, "m/sub.xml", b1.System.Path)
			assert.Len(t, b1.System.Blocks, 2)
			assert.Nil(t, root.Blocks[1].System)

			require.Len(t, root.Lines, 1)
			assert.Equal(t, "2#out:1", root.Lines[0].Source.String())
			assert.Equal(t, "1#in:1", root.Lines[0].Destinations[0].String())

			require.Len(t, doc.Sources, 2)
			assert.Equal(t, "m/root.xml", doc.Sources[0].Path)
			assert.Equal(t, Digest([]byte(exampleSub)), doc.Sources[1].Digest)
		})
	}
}

func TestResolveCycleBackToRoot(t *testing.T) {
	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			src := newCounting(map[string]string{
				"root.xml": exampleRoot,
				"sub.xml":  `<System><Block BlockType="SubSystem" Name="Back" SID="1"><System Ref="root.xml"/></Block></System>`,
			})
			_, err := New(src, opts).Resolve(context.Background(), "root.xml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeCyclicReference), "got %v", err)

			var cyc *errors.CycleError
			require.True(t, stderrors.As(err, &cyc))
			assert.Equal(t, []string{"root.xml", "sub.xml", "root.xml"}, cyc.Chain)
			assert.Contains(t, errors.UserMessage(err), "root.xml -> sub.xml -> root.xml")
		})
	}
}

func TestResolveSelfReference(t *testing.T) {
	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			src := newCounting(map[string]string{
				"a.xml": `<System><Block Name="Me" SID="1"><System Ref="a"/></Block></System>`,
			})
			_, err := New(src, opts).Resolve(context.Background(), "a.xml")

			var cyc *errors.CycleError
			require.True(t, stderrors.As(err, &cyc), "got %v", err)
			assert.Equal(t, []string{"a.xml", "a.xml"}, cyc.Chain)
		})
	}
}

func TestResolveTransitiveCycle(t *testing.T) {
	files := map[string]string{
		"a.xml": `<System><Block Name="ToB" SID="1"><System Ref="b"/></Block></System>`,
		"b.xml": `<System><Block Name="ToC" SID="1"><System Ref="c"/></Block></System>`,
		"c.xml": `<System><Block Name="ToA" SID="1"><System Ref="a"/></Block></System>`,
	}
	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			_, err := New(newCounting(files), opts).Resolve(context.Background(), "a.xml")

			var cyc *errors.CycleError
			require.True(t, stderrors.As(err, &cyc), "got %v", err)
			assert.Equal(t, []string{"a.xml", "b.xml", "c.xml", "a.xml"}, cyc.Chain)
		})
	}
}

func TestResolveCycleBelowRoot(t *testing.T) {
	files := map[string]string{
		"root.xml": `<System><Block Name="S" SID="1"><System Ref="cyc"/></Block></System>`,
		"cyc.xml":  `<System><Block Name="Fwd" SID="1"><System Ref="cyc2"/></Block></System>`,
		"cyc2.xml": `<System><Block Name="Back" SID="1"><System Ref="cyc"/></Block></System>`,
	}
	chains := make(map[string][]string)
	for name, opts := range modes() {
		_, err := New(newCounting(files), opts).Resolve(context.Background(), "root.xml")
		var cyc *errors.CycleError
		require.True(t, stderrors.As(err, &cyc), "%s: got %v", name, err)
		chains[name] = cyc.Chain
	}
	assert.Equal(t, []string{"cyc.xml", "cyc2.xml", "cyc.xml"}, chains["sequential"])
	assert.Equal(t, chains["sequential"], chains["concurrent"])
}

func TestResolveSharedSubsystem(t *testing.T) {
	shared := `<System><P Name="Name">Filter</P>
  <Block BlockType="Gain" Name="K" SID="1"><P Name="Gain">3</P></Block></System>`

	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			src := newCounting(map[string]string{
				"root.xml": `<System>
  <Block BlockType="SubSystem" Name="Left" SID="1"><System Ref="filter"/></Block>
  <Block BlockType="SubSystem" Name="Right" SID="2"><System Ref="./filter.xml"/></Block>
</System>`,
				"filter.xml": shared,
			})
			doc, err := New(src, opts).Resolve(context.Background(), "root.xml")
			require.NoError(t, err)

			left, right := doc.Root.Blocks[0].System, doc.Root.Blocks[1].System
			require.NotNil(t, left)
			require.NotNil(t, right)
			assert.True(t, left.Equal(right), "siblings should receive equal systems")
			assert.Equal(t, 1, src.reads["filter.xml"], "shared file should be read once")
			assert.Len(t, doc.Sources, 2)

			left.Blocks[0].Properties.Set("Gain", "99")
			assert.Equal(t, "3", right.Blocks[0].Properties.Value("Gain"), "siblings must not alias")
		})
	}
}

func TestResolveCachedEqualsFresh(t *testing.T) {
	files := map[string]string{
		"root.xml": `<System>
  <Block Name="A" SID="1"><System Ref="leaf"/></Block>
  <Block Name="B" SID="2"><System Ref="mid"/></Block>
</System>`,
		"mid.xml":  `<System><Block Name="L" SID="1"><System Ref="leaf"/></Block></System>`,
		"leaf.xml": exampleSub,
	}
	doc, err := New(newCounting(files), Options{}).Resolve(context.Background(), "root.xml")
	require.NoError(t, err)

	fresh, err := New(newCounting(files), Options{}).Resolve(context.Background(), "leaf.xml")
	require.NoError(t, err)

	assert.True(t, doc.Root.Blocks[0].System.Equal(fresh.Root))
	assert.True(t, doc.Root.Blocks[1].System.Blocks[0].System.Equal(fresh.Root))
}

func TestResolveMissingReference(t *testing.T) {
	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			src := newCounting(map[string]string{
				"m/root.xml": `<System><Block Name="Gone" SID="42"><System Ref="system_42"/></Block></System>`,
			})
			_, err := New(src, opts).Resolve(context.Background(), "m/root.xml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedReference), "got %v", err)
			assert.True(t, stderrors.Is(err, fs.ErrNotExist))

			var ref *errors.ReferenceError
			require.True(t, stderrors.As(err, &ref))
			assert.Equal(t, "m/system_42.xml", ref.Path)
			assert.Equal(t, "42", ref.BlockID)
			assert.Equal(t, "m/root.xml", ref.From)
		})
	}
}

func TestResolveUnreadableReference(t *testing.T) {
	for name, opts := range modes() {
		t.Run(name, func(t *testing.T) {
			src := newCounting(map[string]string{
				"root.xml":   `<System><Block Name="Locked" SID="7"><System Ref="locked"/></Block></System>`,
				"locked.xml": exampleSub,
			})
			src.fail = map[string]error{"locked.xml": fs.ErrPermission}

			_, err := New(src, opts).Resolve(context.Background(), "root.xml")
			require.Error(t, err)
			assert.False(t, errors.Is(err, errors.ErrCodeUnresolvedReference), "got %v", err)
			assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(err))
			assert.True(t, stderrors.Is(err, fs.ErrPermission))

			var ref *errors.ReferenceError
			require.True(t, stderrors.As(err, &ref))
			assert.Equal(t, "locked.xml", ref.Path)
			assert.Equal(t, "7", ref.BlockID)
		})
	}
}

// A reference failing in one branch cancels its siblings. A file shared with
// another branch must not hand that cancellation to the other branch, or the
// reported error depends on scheduling.
func TestResolveConcurrentReportsFailingReference(t *testing.T) {
	files := map[string]string{
		"root.xml": `<System>
  <Block Name="X" SID="1"><System Ref="x"/></Block>
  <Block Name="Y" SID="2"><System Ref="y"/></Block>
</System>`,
		"x.xml": `<System>
  <Block Name="C" SID="1"><System Ref="c"/></Block>
  <Block Name="Missing" SID="2"><System Ref="missing"/></Block>
  <Block Name="E" SID="3"><System Ref="e"/></Block>
</System>`,
		"y.xml": `<System><Block Name="C" SID="1"><System Ref="c"/></Block></System>`,
		"c.xml": exampleSub,
		"e.xml": exampleSub,
	}
	for i := 0; i < 25; i++ {
		src := newCounting(files)
		src.slow = map[string]time.Duration{"c.xml": 20 * time.Millisecond, "e.xml": 20 * time.Millisecond}

		_, err := New(src, Options{Workers: 8}).Resolve(context.Background(), "root.xml")
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrCodeUnresolvedReference), "run %d: got %v", i, err)

		var ref *errors.ReferenceError
		require.True(t, stderrors.As(err, &ref))
		assert.Equal(t, "missing.xml", ref.Path)
	}
}

func TestResolveConcurrentRetakesCancelledFile(t *testing.T) {
	src := newCounting(map[string]string{"leaf.xml": exampleSub})
	c := &concurrent{
		r:       New(src, Options{Workers: 2}),
		sem:     semaphore.NewWeighted(1),
		flights: make(map[string]*flight),
		waits:   make(map[string]map[string]int),
	}
	// Hold the only slot so the first owner is still queued when cancelled.
	require.NoError(t, c.sem.Acquire(context.Background(), 1))

	ownerCtx, cancel := context.WithCancel(context.Background())
	owned := make(chan error, 1)
	go func() {
		_, err := c.need(ownerCtx, "a.xml", "1", "leaf.xml")
		owned <- err
	}()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.flights["leaf.xml"] != nil
	}, time.Second, time.Millisecond)

	type result struct {
		sys *model.System
		err error
	}
	waited := make(chan result, 1)
	go func() {
		sys, err := c.need(context.Background(), "b.xml", "1", "leaf.xml")
		waited <- result{sys, err}
	}()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.waits["b.xml"] != nil
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-owned, context.Canceled)
	c.sem.Release(1)

	res := <-waited
	require.NoError(t, res.err)
	require.NotNil(t, res.sys)
	assert.Len(t, res.sys.Blocks, 2)
	assert.Equal(t, 1, src.reads["leaf.xml"])
}

func TestResolveMissingRoot(t *testing.T) {
	_, err := New(newCounting(nil), Options{}).Resolve(context.Background(), "nope.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedReference), "got %v", err)
}

func TestResolvePropagatesBuildErrors(t *testing.T) {
	src := newCounting(map[string]string{
		"root.xml": `<System><Block Name="S" SID="1"><System Ref="bad"/></Block></System>`,
		"bad.xml":  `<System><Block SID="1"/><Block SID="1"/></System>`,
	})
	_, err := New(src, Options{}).Resolve(context.Background(), "root.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateID), "got %v", err)
	assert.Contains(t, err.Error(), "bad.xml")
	assert.Equal(t, `bad.xml: duplicate block SID "1"`, errors.UserMessage(err))
}

func TestResolveInferPorts(t *testing.T) {
	src := newCounting(map[string]string{
		"root.xml": `<System><Block SID="1"/><Block SID="2"/>
<Line><P Name="Src">1#out:1</P><P Name="Dst">2#in:1</P></Line></System>`,
	})
	_, err := New(src, Options{}).Resolve(context.Background(), "root.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeSchemaViolation), "got %v", err)

	doc, err := New(src, Options{Builder: builder.Options{InferPorts: true}}).Resolve(context.Background(), "root.xml")
	require.NoError(t, err)
	assert.NotNil(t, doc.Root.Blocks[1].Port("in:1"))
}

func TestResolveDeadline(t *testing.T) {
	files := map[string]string{"root.xml": `<System><Block Name="S" SID="1"><System Ref="sub"/></Block></System>`}
	files["sub.xml"] = exampleSub
	src := newCounting(files)
	src.delay = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := New(src, Options{}).Resolve(ctx, "root.xml")
	assert.True(t, errors.Is(err, errors.ErrCodeResolutionTimeout), "got %v", err)
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newCounting(map[string]string{"root.xml": exampleSub}), Options{}).Resolve(ctx, "root.xml")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentMatchesSequential(t *testing.T) {
	files := map[string]string{}
	root := "<System>"
	for i := 1; i <= 8; i++ {
		root += fmt.Sprintf(`<Block Name="S%d" SID="%d"><System Ref="sub%d"/></Block>`, i, i, i%3)
	}
	root += "</System>"
	files["root.xml"] = root
	for i := 0; i < 3; i++ {
		files[fmt.Sprintf("sub%d.xml", i)] = fmt.Sprintf(
			`<System><P Name="Name">sub%d</P><Block Name="Leaf" SID="1"><System Ref="leaf"/></Block></System>`, i)
	}
	files["leaf.xml"] = exampleSub

	seq, err := New(newCounting(files), Options{}).Resolve(context.Background(), "root.xml")
	require.NoError(t, err)

	src := newCounting(files)
	src.delay = time.Millisecond
	con, err := New(src, Options{Workers: 4}).Resolve(context.Background(), "root.xml")
	require.NoError(t, err)

	assert.True(t, seq.Equal(con), "concurrent result should equal sequential result")
	for name, n := range src.reads {
		assert.Equal(t, 1, n, "%s read %d times", name, n)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		from, ref, want string
	}{
		{"", "system_root.xml", "system_root.xml"},
		{"", "/simulink/systems/system_root.xml", "simulink/systems/system_root.xml"},
		{"simulink/systems/system_root.xml", "system_22", "simulink/systems/system_22.xml"},
		{"simulink/systems/system_root.xml", "system_22.xml", "simulink/systems/system_22.xml"},
		{"a/b/root.xml", "../shared/f", "a/shared/f.xml"},
		{"a/b/root.xml", "./c.xml", "a/b/c.xml"},
		{"a/b/root.xml", "/top.xml", "top.xml"},
		{"root.xml", "sub.dir/system", "sub.dir/system.xml"},
		{"root.xml", "system_7.slx", "system_7.xml"},
		{"a/root.xml", "system.v2", "a/system.xml"},
		{"root.xml", "legacy.XML", "legacy.xml"},
	}

	for _, tt := range tests {
		if got := Canonical(tt.from, tt.ref); got != tt.want {
			t.Errorf("Canonical(%q, %q) = %q, want %q", tt.from, tt.ref, got, tt.want)
		}
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("<System/>"))
	if a != Digest([]byte("<System/>")) {
		t.Error("Digest should be deterministic")
	}
	if a == Digest([]byte("<System />")) {
		t.Error("different inputs should produce different digests")
	}
	if len(a) != 64 {
		t.Errorf("len(Digest) = %d, want 64", len(a))
	}
}
