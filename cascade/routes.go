// Common routes and pages
package cascade

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/G-Node/cascade/cascade/db"
	"github.com/G-Node/cascade/cascade/form"
	"github.com/G-Node/cascade/templates"
	"github.com/gorilla/mux"
)

// sessionHandler is a handler that requires a known session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *db.Session)

// session returns the valid session referenced by the request's cookie, or
// nil if there is none.  Expired sessions are removed.
func (srv *Cascade) session(r *http.Request) *db.Session {
	cookie, err := r.Cookie(srv.Config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := srv.db.GetSession(cookie.Value)
	if err != nil {
		return nil
	}
	if sess.IsExpired(srv.Config.SessionMaxAge) {
		if err := srv.db.DeleteSession(sess.ID); err != nil {
			srv.log.Printf("Failed to delete expired session: %v", err)
		}
		return nil
	}
	return sess
}

// reqSessionHandler acts as middleware to check that the request belongs to a
// known session.  Requests without one are sent to the form.
func (srv *Cascade) reqSessionHandler(handler sessionHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := srv.session(r)
		if sess == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		handler(w, r, sess)
	}
}

// newSessionHandler starts a new session for requests that don't have one,
// so a form can be loaded or submitted by a first-time visitor.
func (srv *Cascade) newSessionHandler(handler sessionHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := srv.session(r)
		if sess == nil {
			sess = db.NewSession()
			if err := srv.db.InsertSession(sess); err != nil {
				srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
				return
			}
			cookie := http.Cookie{
				Name:     srv.Config.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
			}
			if srv.Config.SessionMaxAge > 0 {
				cookie.Expires = sess.Created.Add(srv.Config.SessionMaxAge)
			}
			http.SetCookie(w, &cookie)
		}
		handler(w, r, sess)
	}
}

// formNameExpr matches the names of additional forms.
const formNameExpr = "[A-Za-z0-9_-]+"

// setupWebRoutes sets up the common routes shared by all instances of the service.
//
// Forms (editable and read-only), job log and metrics pages
func (srv *Cascade) setupWebRoutes() {
	router := srv.web.Router
	router.StrictSlash(true)

	router.HandleFunc("/log", srv.reqSessionHandler(srv.renderLog)).Methods("GET")
	router.HandleFunc("/log/{id:[0-9]+}", srv.reqSessionHandler(srv.showJob)).Methods("GET")
	router.Handle("/metrics", srv.metrics.handler()).Methods("GET")
	router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.Dir("./assets"))))

	for _, path := range []string{"/", "/{form:" + formNameExpr + "}/"} {
		router.HandleFunc(path, srv.newSessionHandler(srv.renderForm)).Methods("GET")
		router.HandleFunc(path, srv.newSessionHandler(srv.processForm)).Methods("POST")
	}
}

// requestForm returns the name of the form addressed by the request and the
// form itself.
func (srv *Cascade) requestForm(r *http.Request) (string, form.Form, bool) {
	name := mux.Vars(r)["form"]
	f, ok := srv.forms[name]
	return name, f, ok
}

// formPath returns the path the named form is served at.
func formPath(name string) string {
	if name == "" {
		return "/"
	}
	return "/" + name + "/"
}

// elementView is a form element prepared for the form template.
type elementView struct {
	form.Element
	HTML   template.HTML
	Errors []string
}

func parsePage(content string) (*template.Template, error) {
	tmpl, err := template.New("layout").Parse(templates.Layout)
	if err != nil {
		return nil, err
	}
	return tmpl.Parse(content)
}

// renderFormPage renders the named form with the given element views.
// Extra data entries are passed to the template unchanged.
func (srv *Cascade) renderFormPage(w http.ResponseWriter, status int, name string, f form.Form, views []elementView, data map[string]interface{}) {
	tmpl, err := parsePage(templates.Form)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to load form template")
		return
	}
	if data == nil {
		data = make(map[string]interface{})
	}
	data["form"] = f
	data["action"] = formPath(name)
	data["elements"] = views
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		srv.log.Printf("Failed to render form: %v", err)
	}
}

// widgetView renders a widget element with the given value.
func widgetView(elem form.Element, value interface{}, readonly bool) (elementView, error) {
	view := elementView{Element: elem}
	markup, err := elem.Widget.Render(elem.HTMLID(), value, readonly || elem.ReadOnly)
	if err != nil {
		return view, err
	}
	view.HTML = markup
	return view, nil
}

func (srv *Cascade) renderForm(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	name, f, ok := srv.requestForm(r)
	if !ok {
		srv.web.ErrorResponse(w, http.StatusNotFound, "No such form")
		return
	}
	elements := f.Elements()
	views := make([]elementView, len(elements))
	for idx, elem := range elements {
		if elem.Widget == nil {
			views[idx] = elementView{Element: elem}
			continue
		}
		view, err := widgetView(elem, nil, false)
		if err != nil {
			srv.log.Printf("Failed to render %q: %v", elem.Name, err)
			srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to render form")
			return
		}
		views[idx] = view
	}
	srv.renderFormPage(w, http.StatusOK, name, f, views, nil)
}

// cleanForm validates the submitted values of every element of f.  It
// returns the element views for redisplay and the validation failures by
// field.  Any error that is not a validation failure is returned as is.
// With readonly set, valid values are redisplayed as their cleaned records
// in disabled widgets.
func cleanForm(f form.Form, data form.ListData, readonly bool) ([]elementView, map[string]error, error) {
	elements := f.Elements()
	views := make([]elementView, len(elements))
	failed := make(map[string]error)
	for idx, elem := range elements {
		if elem.Widget == nil {
			elem.Value = data.Get(elem.Name)
			views[idx] = elementView{Element: elem}
			if elem.Required {
				if err := form.Required(elem.Name, elem.Value); err != nil {
					failed[elem.Name] = err
					views[idx].Errors = []string{err.Error()}
				}
			}
			continue
		}

		raw := elem.Widget.Value(data)
		cleaned, err := elem.Widget.Clean(raw)
		var verr *form.ValidationError
		if err != nil && !errors.As(err, &verr) {
			return nil, nil, err
		}
		value := raw
		if err == nil && readonly {
			value = cleaned
		}
		view, rerr := widgetView(elem, value, readonly)
		if rerr != nil {
			return nil, nil, rerr
		}
		if err != nil {
			failed[elem.Name] = err
			view.Errors = []string{err.Error()}
		}
		views[idx] = view
	}
	return views, failed, nil
}

func (srv *Cascade) processForm(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	name, f, ok := srv.requestForm(r)
	if !ok {
		srv.web.ErrorResponse(w, http.StatusNotFound, "No such form")
		return
	}
	if err := r.ParseForm(); err != nil {
		srv.log.Printf("Failed to parse form: %v", err)
		srv.web.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	data := form.Values(r.PostForm)

	views, failed, err := cleanForm(f, data, false)
	if err != nil {
		srv.log.Printf("Failed to validate form: %v", err)
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to validate form")
		return
	}
	if len(failed) > 0 {
		srv.metrics.rejected(failed)
		errs := make(form.Errors)
		for field, ferr := range failed {
			errs.Add(field, ferr)
		}
		srv.renderFormPage(w, http.StatusOK, name, f, views, map[string]interface{}{"errors": errs})
		return
	}
	srv.metrics.accepted()

	jobValues := make(map[string][]string)
	for _, elem := range f.Elements() {
		jobValues[elem.Name] = data.List(elem.Name)
	}
	newJob := new(db.Job)
	newJob.SessionID = sess.ID
	newJob.FormName = name
	newJob.ValueMap = jobValues
	if err := srv.worker.Enqueue(newJob); err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	// redirect to job log
	http.Redirect(w, r, "/log", http.StatusSeeOther)
}

func (srv *Cascade) renderLog(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	tmpl, err := parsePage(templates.LogView)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to load log template")
		return
	}

	joblog, err := srv.db.GetSessionJobs(sess.ID)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error reading jobs from DB")
		return
	}
	if err := tmpl.Execute(w, joblog); err != nil {
		srv.log.Printf("Failed to render log: %v", err)
	}
}

func (srv *Cascade) showJob(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	vars := mux.Vars(r)
	jobid, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusNotFound, "Invalid ID")
		return
	}
	job, err := srv.db.GetJob(jobid)
	if err != nil || job == nil || job.SessionID != sess.ID {
		srv.web.ErrorResponse(w, http.StatusNotFound, "No such job")
		return
	}
	f, ok := srv.forms[job.FormName]
	if !ok {
		srv.web.ErrorResponse(w, http.StatusNotFound, "The job's form is no longer served")
		return
	}

	// Redisplay the stored values; selections that still validate are shown
	// through their resolved records.
	views, _, err := cleanForm(f, form.Values(url.Values(job.ValueMap)), true)
	if err != nil {
		srv.log.Printf("Failed to load job values: %v", err)
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to render job")
		return
	}

	data := make(map[string]interface{})
	timefmt := "15:04:05 Mon Jan 2 2006"
	data["submit_time"] = job.SubmitTime.Format(timefmt)
	if job.IsFinished() {
		data["end_time"] = job.EndTime.Format(timefmt)
	}
	data["messages"] = job.Messages
	if job.Error != "" {
		data["error"] = job.Error
	}
	data["readonly"] = true
	srv.renderFormPage(w, http.StatusOK, job.FormName, f, views, data)
}
