package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Answer set indexes. Every scored line belongs to the feedback-only test
// set or the held-out quiz set.
const (
	TestSet = 0
	QuizSet = 1
)

// Record is one team's leaderboard entry
type Record struct {
	// Name is the group name
	Name string `json:"name" bson:"_id"`

	// Submitted is when the team's latest scored submission arrived
	Submitted time.Time `json:"submitted" bson:"submitted"`

	// Accuracy holds the test and quiz set accuracies of the latest
	// submission, indexed by TestSet / QuizSet
	Accuracy []float64 `json:"accuracy" bson:"accuracy"`

	// RMSE holds the test and quiz set RMSE of the latest submission plus
	// a third element: the best quiz RMSE the team has ever submitted.
	// The third element never increases across updates.
	RMSE []float64 `json:"rmse" bson:"rmse"`
}

// BestRMSE returns the team's best quiz RMSE so far. Legacy two element
// records fall back to their quiz RMSE.
func (r Record) BestRMSE() float64 {
	if len(r.RMSE) > QuizSet+1 {
		return r.RMSE[QuizSet+1]
	}

	return r.RMSE[QuizSet]
}

// Store persists leaderboard records keyed by group name
type Store interface {
	// Load reads all records. A store which has never been written loads
	// as empty.
	Load(ctx context.Context) (map[string]Record, error)

	// Save writes all records
	Save(ctx context.Context, records map[string]Record) error

	// Close releases the store's connection
	Close(ctx context.Context) error
}

// NewStore selects a store implementation from the database argument: a
// mongodb:// URI opens a MongoDB store, anything else is a JSON file path.
func NewStore(ctx context.Context, db string) (Store, error) {
	if strings.HasPrefix(db, "mongodb://") {
		return DialMongo(ctx, db)
	}

	return NewFileStore(db), nil
}

// CheckThrottle rejects a submission arriving less than minInterval after
// the team's previous one. Must be evaluated before any mutation so a
// rejection leaves no partial update behind. A nil previous record means the
// team has never submitted.
func CheckThrottle(previous *Record, now time.Time, minInterval time.Duration) error {
	if previous == nil {
		return nil
	}

	elapsed := now.Sub(previous.Submitted)
	if elapsed < minInterval {
		return fmt.Errorf("it has only been %d seconds since your last "+
			"submission (submissions allowed every %d seconds)",
			int(elapsed.Seconds()), int(minInterval.Seconds()))
	}

	return nil
}

// Update replaces a team's record with its new scores, carrying forward the
// best quiz RMSE so far. Legacy two element RMSE records are upgraded on the
// way through.
func Update(records map[string]Record, name string, submitted time.Time,
	accuracy []float64, rmse []float64) Record {
	best := rmse[QuizSet]
	if previous, ok := records[name]; ok {
		if previousBest := previous.BestRMSE(); previousBest < best {
			best = previousBest
		}
	}

	record := Record{
		Name:      name,
		Submitted: submitted,
		Accuracy:  accuracy,
		RMSE:      []float64{rmse[TestSet], rmse[QuizSet], best},
	}
	records[name] = record

	return record
}
