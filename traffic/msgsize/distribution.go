// Package msgsize samples message sizes, in flits, for the blast
// workload's request and response paths: fixed sizes, a uniform range, and
// request-conditional response sizing.
package msgsize

import "fmt"

// RNG is the narrow *rand.Rand slice a distribution needs to sample.
type RNG interface {
	Intn(n int) int
}

// Distribution samples message sizes in flits. NextMessageSize is used for
// requests; NextResponseSize lets a response size depend on the request
// that triggered it (spec §4.3's conditional form). MaxMessageSize bounds
// the distribution, used by the blast terminal's pacing law to size
// startup jitter.
type Distribution interface {
	NextMessageSize() int
	NextResponseSize(requestSizeFlits int) int
	MaxMessageSize() int
}

// fixed always returns the same size, for requests and responses alike —
// grounded on the simplest member of the family every other distribution
// here generalizes.
type fixed struct {
	size int
}

// NewFixed returns a Distribution that always samples size flits. size
// must be > 0.
func NewFixed(size int) Distribution {
	if size <= 0 {
		panic(fmt.Sprintf("msgsize: fixed size must be > 0, got %d", size))
	}

	return fixed{size: size}
}

func (f fixed) NextMessageSize() int       { return f.size }
func (f fixed) NextResponseSize(_ int) int { return f.size }
func (f fixed) MaxMessageSize() int        { return f.size }

// uniformRange samples uniformly from [min, max] flits, independently of
// any request that triggered it.
type uniformRange struct {
	min, max int
	rng      RNG
}

// NewUniformRange returns a Distribution that samples uniformly from
// [min, max] flits. Requires 0 < min <= max.
func NewUniformRange(min, max int, rng RNG) Distribution {
	if min <= 0 || max < min {
		panic(fmt.Sprintf("msgsize: invalid uniform range [%d,%d]", min, max))
	}

	return uniformRange{min: min, max: max, rng: rng}
}

func (u uniformRange) sample() int {
	return u.min + u.rng.Intn(u.max-u.min+1)
}

func (u uniformRange) NextMessageSize() int       { return u.sample() }
func (u uniformRange) NextResponseSize(_ int) int { return u.sample() }
func (u uniformRange) MaxMessageSize() int        { return u.max }

// requestEcho replies with a size derived from the request's own size, the
// conditional form spec §4.3 describes ("may sample a response size that
// is conditional on the request's size"). The response is the request
// size scaled by ratio and clamped to at least one flit.
type requestEcho struct {
	requestDist Distribution
	ratio       float64
}

// NewRequestEcho builds a Distribution whose requests are drawn from
// requestDist and whose responses are requestSizeFlits scaled by ratio
// (clamped to >= 1 flit). ratio must be >= 0.
func NewRequestEcho(requestDist Distribution, ratio float64) Distribution {
	if ratio < 0 {
		panic(fmt.Sprintf("msgsize: response ratio must be >= 0, got %f", ratio))
	}

	return requestEcho{requestDist: requestDist, ratio: ratio}
}

func (r requestEcho) NextMessageSize() int { return r.requestDist.NextMessageSize() }

func (r requestEcho) NextResponseSize(requestSizeFlits int) int {
	size := int(float64(requestSizeFlits) * r.ratio)
	if size < 1 {
		size = 1
	}

	return size
}

func (r requestEcho) MaxMessageSize() int {
	max := r.requestDist.MaxMessageSize()
	scaled := int(float64(max) * r.ratio)
	if scaled > max {
		return scaled
	}

	return max
}
