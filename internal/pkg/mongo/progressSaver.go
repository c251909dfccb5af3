package mongo

import (
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/pkg/errors"
)

// ProgressSaver saves training progress records to mongo db
type ProgressSaver struct {
	SessionProvider *SessionProvider
}

//NewProgressSaver creates ProgressSaver instance
func NewProgressSaver(sessionProvider *SessionProvider) (*ProgressSaver, error) {
	f := ProgressSaver{SessionProvider: sessionProvider}
	return &f, nil
}

// Save inserts progress record
func (ps *ProgressSaver) Save(p *persistence.Progress) error {
	cmdapp.Log.Debugf("Saving progress %s: step %d", p.RunID, p.Step)

	c, ctx, cancel, err := newColl(ps.SessionProvider, progressTable)
	if err != nil {
		return err
	}
	defer cancel()

	_, err = c.InsertOne(ctx, p)
	return errors.Wrap(err, "Can't insert progress")
}
