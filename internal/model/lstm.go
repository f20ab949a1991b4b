package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
)

// LSTMModel is a two-layer LSTM with a single linear output unit. The first
// layer emits its full hidden sequence to feed the second; the second emits
// only its final hidden state.
type LSTMModel struct {
	layer1, layer2 *lstmLayer
	headW          []float64
	headB          []float64
	steps          int
	fitted         bool
}

func (m *LSTMModel) Kind() Type   { return LSTM }
func (m *LSTMModel) Fitted() bool { return m.fitted }
func (m *LSTMModel) Steps() int   { return m.steps }

func trainLSTM(spec Spec, windows [][][]float64, targets []float64, logger zerolog.Logger, metrics MetricsInterface) (*LSTMModel, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("lstm: no training windows")
	}
	if len(windows) != len(targets) {
		return nil, fmt.Errorf("lstm: %d windows for %d targets", len(windows), len(targets))
	}
	steps := len(windows[0])
	if steps == 0 || len(windows[0][0]) == 0 {
		return nil, fmt.Errorf("lstm: empty window shape")
	}
	in := len(windows[0][0])
	for i, w := range windows {
		if len(w) != steps {
			return nil, fmt.Errorf("lstm: window %d has %d steps, expected %d", i, len(w), steps)
		}
	}

	units := spec.Units
	if units <= 0 {
		units = 50
	}
	epochs := spec.Epochs
	if epochs <= 0 {
		epochs = 10
	}
	batchSize := spec.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	rnd := rand.New(rand.NewSource(spec.Seed))
	l1 := newLSTMLayer(in, units, rnd)
	l2 := newLSTMLayer(units, units, rnd)
	m := &LSTMModel{
		layer1: l1,
		layer2: l2,
		headW:  randSlice(units, 1/math.Sqrt(float64(units)), rnd),
		headB:  make([]float64, 1),
		steps:  steps,
	}

	g1 := newLayerGrads(l1)
	g2 := newLayerGrads(l2)
	gHeadW := make([]float64, units)
	gHeadB := make([]float64, 1)

	opt := newAdam(1e-3, 0.9, 0.999, 1e-8)
	opt.add(l1.wx, g1.wx)
	opt.add(l1.wh, g1.wh)
	opt.add(l1.b, g1.b)
	opt.add(l2.wx, g2.wx)
	opt.add(l2.wh, g2.wh)
	opt.add(l2.b, g2.b)
	opt.add(m.headW, gHeadW)
	opt.add(m.headB, gHeadB)

	n := len(windows)
	dh2 := make([][]float64, steps)
	for t := range dh2 {
		dh2[t] = make([]float64, units)
	}

	for epoch := 1; epoch <= epochs; epoch++ {
		perm := rnd.Perm(n)
		var epochLoss float64

		for start := 0; start < n; start += batchSize {
			end := start + batchSize
			if end > n {
				end = n
			}
			opt.zeroGrads()
			batchN := float64(end - start)

			for _, s := range perm[start:end] {
				hs1, c1 := l1.forward(windows[s])
				hs2, c2 := l2.forward(hs1)
				hLast := hs2[steps-1]

				pred := m.headB[0]
				for u := 0; u < units; u++ {
					pred += m.headW[u] * hLast[u]
				}
				diff := pred - targets[s]
				epochLoss += diff * diff

				dpred := 2 * diff / batchN
				gHeadB[0] += dpred
				for t := range dh2 {
					zero(dh2[t])
				}
				for u := 0; u < units; u++ {
					gHeadW[u] += dpred * hLast[u]
					dh2[steps-1][u] = dpred * m.headW[u]
				}

				dx2 := l2.backward(c2, dh2, g2)
				l1.backward(c1, dx2, g1)
			}

			opt.step()
		}

		loss := epochLoss / float64(n)
		logger.Info().
			Int("epoch", epoch).
			Int("epochs", epochs).
			Float64("loss", loss).
			Msg("lstm epoch complete")
		if metrics != nil {
			metrics.EpochLossObserve(loss)
		}
	}

	m.fitted = true
	return m, nil
}

// Predict returns the model output for each window.
func (m *LSTMModel) Predict(windows [][][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("lstm: model is not fitted")
	}
	out := make([]float64, len(windows))
	for i, w := range windows {
		if len(w) != m.steps {
			return nil, fmt.Errorf("lstm: window %d has %d steps, expected %d", i, len(w), m.steps)
		}
		hs1, _ := m.layer1.forward(w)
		hs2, _ := m.layer2.forward(hs1)
		hLast := hs2[len(hs2)-1]
		v := m.headB[0]
		for u, wgt := range m.headW {
			v += wgt * hLast[u]
		}
		out[i] = v
	}
	return out, nil
}

// lstmLayer holds the gate weights of one LSTM layer. Rows of wx/wh/b are laid
// out gate-major: input, forget, cell, output.
type lstmLayer struct {
	in, units int
	wx        []float64 // 4U x in
	wh        []float64 // 4U x U
	b         []float64 // 4U
}

func newLSTMLayer(in, units int, rnd *rand.Rand) *lstmLayer {
	limit := 1 / math.Sqrt(float64(units))
	l := &lstmLayer{
		in:    in,
		units: units,
		wx:    randSlice(4*units*in, limit, rnd),
		wh:    randSlice(4*units*units, limit, rnd),
		b:     make([]float64, 4*units),
	}
	// Forget gate bias starts at 1 so early training does not wipe state.
	for u := 0; u < units; u++ {
		l.b[units+u] = 1
	}
	return l
}

type layerGrads struct {
	wx, wh, b []float64
}

func newLayerGrads(l *lstmLayer) *layerGrads {
	return &layerGrads{
		wx: make([]float64, len(l.wx)),
		wh: make([]float64, len(l.wh)),
		b:  make([]float64, len(l.b)),
	}
}

// stepCache keeps one timestep's activations for backpropagation through time.
type stepCache struct {
	x, hPrev, cPrev         []float64
	i, f, g, o, c, tanhC, h []float64
}

func (l *lstmLayer) forward(xs [][]float64) ([][]float64, []stepCache) {
	U := l.units
	hs := make([][]float64, len(xs))
	caches := make([]stepCache, len(xs))

	hPrev := make([]float64, U)
	cPrev := make([]float64, U)

	for t, x := range xs {
		cache := stepCache{
			x:     x,
			hPrev: append([]float64(nil), hPrev...),
			cPrev: append([]float64(nil), cPrev...),
			i:     make([]float64, U),
			f:     make([]float64, U),
			g:     make([]float64, U),
			o:     make([]float64, U),
			c:     make([]float64, U),
			tanhC: make([]float64, U),
			h:     make([]float64, U),
		}

		for u := 0; u < U; u++ {
			zi := l.gatePre(0, u, x, hPrev)
			zf := l.gatePre(1, u, x, hPrev)
			zg := l.gatePre(2, u, x, hPrev)
			zo := l.gatePre(3, u, x, hPrev)

			i := sigmoid(zi)
			f := sigmoid(zf)
			g := math.Tanh(zg)
			o := sigmoid(zo)
			c := f*cPrev[u] + i*g
			tc := math.Tanh(c)

			cache.i[u] = i
			cache.f[u] = f
			cache.g[u] = g
			cache.o[u] = o
			cache.c[u] = c
			cache.tanhC[u] = tc
			cache.h[u] = o * tc
		}

		copy(hPrev, cache.h)
		copy(cPrev, cache.c)
		hs[t] = cache.h
		caches[t] = cache
	}

	return hs, caches
}

// gatePre computes the pre-activation of one gate row. gate ordering matches
// the weight layout: 0 input, 1 forget, 2 cell, 3 output.
func (l *lstmLayer) gatePre(gate, u int, x, hPrev []float64) float64 {
	row := gate*l.units + u
	s := l.b[row]
	for k := 0; k < l.in; k++ {
		s += l.wx[row*l.in+k] * x[k]
	}
	for k := 0; k < l.units; k++ {
		s += l.wh[row*l.units+k] * hPrev[k]
	}
	return s
}

// backward runs full backpropagation through time over the cached sequence,
// accumulating weight gradients into g and returning the gradient with respect
// to the layer inputs.
func (l *lstmLayer) backward(caches []stepCache, dhs [][]float64, g *layerGrads) [][]float64 {
	U := l.units
	T := len(caches)

	dxs := make([][]float64, T)
	dhNext := make([]float64, U)
	dcNext := make([]float64, U)
	dz := make([]float64, 4*U)

	for t := T - 1; t >= 0; t-- {
		cache := caches[t]

		for u := 0; u < U; u++ {
			dh := dhs[t][u] + dhNext[u]
			do := dh * cache.tanhC[u]
			dc := dh*cache.o[u]*(1-cache.tanhC[u]*cache.tanhC[u]) + dcNext[u]
			di := dc * cache.g[u]
			df := dc * cache.cPrev[u]
			dg := dc * cache.i[u]
			dcNext[u] = dc * cache.f[u]

			dz[u] = di * cache.i[u] * (1 - cache.i[u])
			dz[U+u] = df * cache.f[u] * (1 - cache.f[u])
			dz[2*U+u] = dg * (1 - cache.g[u]*cache.g[u])
			dz[3*U+u] = do * cache.o[u] * (1 - cache.o[u])
		}

		dx := make([]float64, l.in)
		zero(dhNext)
		for r := 0; r < 4*U; r++ {
			d := dz[r]
			g.b[r] += d
			for k := 0; k < l.in; k++ {
				g.wx[r*l.in+k] += d * cache.x[k]
				dx[k] += l.wx[r*l.in+k] * d
			}
			for k := 0; k < U; k++ {
				g.wh[r*U+k] += d * cache.hPrev[k]
				dhNext[k] += l.wh[r*U+k] * d
			}
		}
		dxs[t] = dx
	}

	return dxs
}

// adam is the Adam optimizer over a set of parameter/gradient slice pairs.
type adam struct {
	lr, b1, b2, eps float64
	t               int
	params          []adamParam
}

type adamParam struct {
	p, g, m, v []float64
}

func newAdam(lr, b1, b2, eps float64) *adam {
	return &adam{lr: lr, b1: b1, b2: b2, eps: eps}
}

func (a *adam) add(p, g []float64) {
	a.params = append(a.params, adamParam{
		p: p, g: g,
		m: make([]float64, len(p)),
		v: make([]float64, len(p)),
	})
}

func (a *adam) zeroGrads() {
	for _, pr := range a.params {
		zero(pr.g)
	}
}

func (a *adam) step() {
	a.t++
	bc1 := 1 - math.Pow(a.b1, float64(a.t))
	bc2 := 1 - math.Pow(a.b2, float64(a.t))
	for _, pr := range a.params {
		for i := range pr.p {
			pr.m[i] = a.b1*pr.m[i] + (1-a.b1)*pr.g[i]
			pr.v[i] = a.b2*pr.v[i] + (1-a.b2)*pr.g[i]*pr.g[i]
			mHat := pr.m[i] / bc1
			vHat := pr.v[i] / bc2
			pr.p[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

func sigmoid(x float64) float64 {
	// Clamped for numerical stability.
	if x > 20 {
		return 1
	}
	if x < -20 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}

func randSlice(n int, limit float64, rnd *rand.Rand) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = (rnd.Float64()*2 - 1) * limit
	}
	return s
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
