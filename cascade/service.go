package cascade

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"regexp"

	"github.com/G-Node/cascade/cascade/db"
	"github.com/G-Node/cascade/cascade/form"
	"github.com/G-Node/cascade/cascade/web"
	"github.com/G-Node/cascade/cascade/worker"
)

// Cascade represents a full service which contains a web server serving a
// form with dependent selections, a database for the catalog, jobs and
// sessions, and a worker that runs a job for every accepted submission.
type Cascade struct {
	web     *web.Server
	db      *db.Connection
	worker  *worker.Worker
	log     *log.Logger
	metrics *metrics
	// forms by name; the unnamed form is served at the root
	forms  map[string]form.Form
	Config *Config
}

// NewService creates a new Cascade with a given form and custom job action.
// The form may be empty and set later with SetForm, typically once its fields
// have been built from the service's catalog (see DB).
func NewService(f form.Form, action worker.JobAction, config Config) (*Cascade, error) {
	srv := new(Cascade)
	srv.Config = &config
	srv.log = log.New(os.Stderr, "", log.LstdFlags)
	srv.metrics = newMetrics()
	srv.forms = make(map[string]form.Form)

	srv.log.Print("Initialising database")
	conn, err := db.New(config.DBPath)
	if err != nil {
		return nil, err
	}
	srv.db = conn

	srv.worker = worker.New(srv.db, config.QueueSize)

	srv.web = web.New(config.Port)
	srv.setupWebRoutes()

	srv.SetForm(f)
	srv.SetJobAction(action)
	return srv, nil
}

// DB returns the service's database connection.
func (srv *Cascade) DB() *db.Connection {
	return srv.db
}

// SetLogger replaces the logger of the service and its components.
func (srv *Cascade) SetLogger(logger *log.Logger) {
	srv.log = logger
	srv.web.SetLogger(logger)
	srv.worker.SetLogger(logger)
}

// Start the service (worker and web server).
func (srv *Cascade) Start() error {
	for name, f := range srv.forms {
		if len(f.Elements()) > 0 {
			continue
		}
		if name == "" {
			return fmt.Errorf("nil or empty form is invalid")
		}
		return fmt.Errorf("nil or empty form %q is invalid", name)
	}
	if srv.worker.Action == nil {
		return fmt.Errorf("nil job function is invalid")
	}

	srv.log.Print("Starting worker")
	srv.worker.Start()

	srv.log.Print("Starting web service")
	srv.web.Start()
	srv.log.Print("Web server started")
	return nil
}

// WaitForInterrupt blocks until the service receives an interrupt signal (SIGINT).
func (srv *Cascade) WaitForInterrupt() {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt)
	<-sigchan
}

// Stop the service by gracefully shutting down the web service, stopping the
// worker, and closing the database connection, in that order.
func (srv *Cascade) Stop() {
	srv.log.Print("Stopping web service")
	srv.web.Stop()

	srv.log.Print("Stopping worker queue")
	srv.worker.Stop()

	srv.log.Print("Closing database connection")
	if err := srv.db.Close(); err != nil {
		srv.log.Printf("Error closing database: %v", err)
	}
	srv.log.Print("Service stopped")
}

// SetForm can be used to set or override the form for the service.  It is
// served at the root path.
func (srv *Cascade) SetForm(f form.Form) {
	srv.forms[""] = copyForm(f)
}

// AddForm serves an additional form at /<name>/.  Names are made of
// letters, digits, '-' and '_' and must not clash with the service's own
// pages.
func (srv *Cascade) AddForm(name string, f form.Form) error {
	if !formNamePattern.MatchString(name) {
		return fmt.Errorf("invalid form name %q", name)
	}
	for _, reserved := range reservedPaths {
		if name == reserved {
			return fmt.Errorf("form name %q is reserved", name)
		}
	}
	srv.forms[name] = copyForm(f)
	return nil
}

var formNamePattern = regexp.MustCompile("^" + formNameExpr + "$")

// paths that are routed before the forms
var reservedPaths = []string{"log", "metrics", "assets"}

func copyForm(f form.Form) form.Form {
	pages := make([]form.Page, len(f.Pages))
	copy(pages, f.Pages)
	f.Pages = pages
	return f
}

// SetJobAction can be used to set or override the custom job action for the service.
func (srv *Cascade) SetJobAction(f worker.JobAction) {
	srv.worker.Action = f
}
