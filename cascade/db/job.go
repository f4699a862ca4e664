package db

import (
	"fmt"
	"time"
)

// Job holds an accepted form submission and the outcome of processing it.
type Job struct {
	// Job ID (auto)
	ID int64 `xorm:"pk autoincr"`
	// ID of the session that submitted the job
	SessionID string `xorm:"index"`
	// Name of the form the job was submitted with (empty for the root form)
	FormName string
	// Name/label of the job
	Label string
	// Form values that created the job
	ValueMap map[string][]string
	// Messages returned from the finished job
	Messages []string
	// Error message if the job failed
	Error string
	// Time when the job was submitted to the queue
	SubmitTime time.Time
	// Time when the job finished (0 if ongoing)
	EndTime time.Time
}

// InsertJob inserts a new Job into the database.  Upon successful return, the
// Job has a new unique ID.
func (conn *Connection) InsertJob(job *Job) error {
	_, err := conn.engine.Insert(job) // job ID is assigned on insertion
	return err
}

// UpdateJob updates an existing Job entry in the database.
func (conn *Connection) UpdateJob(job *Job) error {
	_, err := conn.engine.ID(job.ID).AllCols().Update(job)
	return err
}

// GetSessionJobs retrieves all the Jobs submitted in a given session.
func (conn *Connection) GetSessionJobs(sessionID string) ([]Job, error) {
	sessjobs := make([]Job, 0)
	if err := conn.engine.Where("session_id = ?", sessionID).Asc("id").Find(&sessjobs); err != nil {
		return nil, err
	}

	return sessjobs, nil
}

// IsFinished returns true if the Job has finished (has an EndTime).
func (j *Job) IsFinished() bool {
	return !j.EndTime.IsZero()
}

// AllJobs returns all Job entries in the database.
func (conn *Connection) AllJobs() ([]Job, error) {
	alljobs := make([]Job, 0)
	if err := conn.engine.Asc("id").Find(&alljobs); err != nil {
		return nil, err
	}

	return alljobs, nil
}

// GetJob retrieves a Job from the database given its ID.
func (conn *Connection) GetJob(id int64) (*Job, error) {
	j := new(Job)
	if has, err := conn.engine.ID(id).Get(j); err != nil {
		return nil, err
	} else if !has {
		return nil, fmt.Errorf("not found")
	}
	return j, nil
}
