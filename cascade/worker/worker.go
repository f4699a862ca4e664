package worker

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/G-Node/cascade/cascade/db"
)

// JobAction is run for every accepted submission.  It receives the submitted
// form values and returns messages to store with the job.
type JobAction func(values map[string][]string) ([]string, error)

// DefaultQueueSize is the length of the job queue when none is configured.
const DefaultQueueSize = 100

// Worker with queue for running Jobs asynchronously.
type Worker struct {
	queue  chan *db.Job
	stop   chan bool
	done   chan bool
	Action JobAction
	db     *db.Connection
	log    *log.Logger
}

// New returns a Worker storing its jobs in dbconn.  A queueSize of zero or
// less selects DefaultQueueSize.
func New(dbconn *db.Connection, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	w := new(Worker)
	w.queue = make(chan *db.Job, queueSize)
	w.stop = make(chan bool)
	w.done = make(chan bool)
	w.db = dbconn
	w.log = log.New(os.Stderr, "", log.LstdFlags)
	return w
}

// SetLogger replaces the worker's logger.
func (w *Worker) SetLogger(logger *log.Logger) {
	w.log = logger
}

// Enqueue adds the job to the queue and stores it in the database.
func (w *Worker) Enqueue(j *db.Job) error {
	j.SubmitTime = time.Now()
	if j.Label == "" {
		j.Label = Label(j.ValueMap)
	}
	if err := w.db.InsertJob(j); err != nil {
		w.log.Printf("Error inserting job %+v into db: %v", j, err)
		return err
	}
	w.queue <- j
	return nil
}

// Label summarises submitted values as "key=value" pairs in key order.
func Label(values map[string][]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(values[k], ",")))
	}
	return strings.Join(parts, " ")
}

// Stop the worker after the job that is currently running, if any.  Jobs
// still in the queue are not run.
func (w *Worker) Stop() {
	w.stop <- true
	<-w.done
}

func (w *Worker) run(j *db.Job) {
	defer func() {
		// Update job entry in db when done
		if err := w.db.UpdateJob(j); err != nil {
			w.log.Printf("Error updating job [J%d]: %v", j.ID, err)
		}
	}()
	w.log.Printf("Starting job %q", j.Label)
	var msgs []string
	var err error
	if w.Action != nil {
		msgs, err = w.Action(j.ValueMap)
	}
	j.Messages = msgs
	j.EndTime = time.Now()
	if err == nil {
		w.log.Printf("Job [J%d] %s finished", j.ID, j.Label)
	} else {
		w.log.Printf("Job [J%d] %s failed: %s", j.ID, j.Label, err)
		j.Error = err.Error()
	}
}

// Start processing the queue in a goroutine.
func (w *Worker) Start() {
	go func() {
		defer func() { w.done <- true }()
		for {
			select {
			case job := <-w.queue:
				w.run(job)
			case <-w.stop:
				return
			}
		}
	}()
	w.log.Print("Worker started")
}
