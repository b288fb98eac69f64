package postgres

import "github.com/kamusku/kamus/internal/observability"

// observer times store operations when metrics are wired in.
type observer struct {
	prom *observability.Prom
}

func (o observer) observe(op string, fn func() error) error {
	if o.prom != nil {
		return o.prom.ObserveDB(op, fn)
	}
	return fn()
}
