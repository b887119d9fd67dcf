package postproc

import (
	"context"
	"fmt"
	"log"

	"github.com/japaniel/termgraph/pkg/termino"
)

// Trigger reruns a pass during ingestion: every Period processed documents,
// and whenever the terminology grows past SizeBound. Zero disables a mode.
type Trigger struct {
	Pass      Pass
	Period    int
	SizeBound int
	Logger    *log.Logger
}

// Observe is called after each processed document with the running count. It
// returns the number of terms the pass removed, if it ran.
func (tr *Trigger) Observe(ctx context.Context, t *termino.Terminology, processed int) (int, error) {
	periodic := tr.Period > 0 && processed > 0 && processed%tr.Period == 0
	oversized := tr.SizeBound > 0 && t.Size() > tr.SizeBound
	if !periodic && !oversized {
		return 0, nil
	}
	if tr.Logger != nil {
		tr.Logger.Printf("triggered cleaning after %d documents (%d terms)", processed, t.Size())
	}
	n, err := tr.Pass.Run(ctx, t)
	if err != nil {
		return n, fmt.Errorf("triggered cleaning: %w", err)
	}
	return n, nil
}
