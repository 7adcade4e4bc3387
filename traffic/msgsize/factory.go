package msgsize

import "fmt"

// Settings is the narrow read access New needs out of a configuration
// tree.
type Settings interface {
	RequireInt(key string) int
	OptionalFloat(key string, def float64) float64
}

// New builds the named distribution, reading whatever parameters it needs
// from settings. An unknown kind is fatal.
func New(kind string, settings Settings, rng RNG) Distribution {
	switch kind {
	case "fixed":
		return NewFixed(settings.RequireInt("size"))
	case "uniform_range":
		return NewUniformRange(settings.RequireInt("min"), settings.RequireInt("max"), rng)
	default:
		panic(fmt.Sprintf("msgsize: unknown distribution %q", kind))
	}
}
