package trackertest

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gcharanteja/unilogger/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DefaultAPIKey is the key the test server accepts.
const DefaultAPIKey = "test-api-key"

// Server is an in-process tracking server. It answers the full HTTP surface
// the client speaks and counts requests per route for assertions.
type Server struct {
	store    *Store
	ts       *httptest.Server
	apiKey   string
	filesDir string
	user     domain.User

	mu       sync.Mutex
	requests map[string]int
}

// New starts a tracking server backed by an in-memory database. The server
// and its database are torn down with the test.
func New(t *testing.T) *Server {
	t.Helper()

	dsn := fmt.Sprintf("file:trackertest_%s?mode=memory&cache=shared", uuid.NewString()[:8])
	store, err := NewStore(dsn)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	s := &Server{
		store:    store,
		apiKey:   DefaultAPIKey,
		filesDir: t.TempDir(),
		user:     domain.User{ID: 1, Username: "testuser", Email: "test@example.com"},
		requests: make(map[string]int),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.authMiddleware)
	e.Use(s.countMiddleware)
	s.registerRoutes(e)

	s.ts = httptest.NewServer(e)
	t.Cleanup(func() {
		s.ts.Close()
		store.Close()
	})
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.ts.URL
}

// APIKey returns the key the server accepts.
func (s *Server) APIKey() string {
	return s.apiKey
}

// Store exposes the backing store for direct seeding and inspection.
func (s *Server) Store() *Store {
	return s.store
}

// RequestCount returns how many times a route was served. The route is the
// registered pattern, e.g. RequestCount("POST", "/teams") or
// RequestCount("GET", "/runs/:id/metrics").
func (s *Server) RequestCount(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method+" "+route]
}

func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/health" {
			return next(c)
		}
		if c.Request().Header.Get("X-API-Key") != s.apiKey {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "invalid API key"})
		}
		return next(c)
	}
}

func (s *Server) countMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.requests[c.Request().Method+" "+c.Path()]++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/health", s.health)
	e.GET("/users/me", s.currentUser)

	e.POST("/teams", s.createTeam)
	e.GET("/teams", s.listTeams)
	e.GET("/teams/:id", s.getTeam)
	e.POST("/teams/:id/projects", s.createProject)
	e.GET("/teams/:id/projects", s.listProjects)
	e.GET("/projects/:id", s.getProject)

	e.POST("/projects/:id/runs/init", s.initRun)
	e.GET("/runs/:id", s.getRun)
	e.POST("/runs/:id/finish", s.finishRun)
	e.POST("/runs/:id/log", s.logMetric)
	e.GET("/runs/:id/metrics", s.listMetrics)
	e.GET("/runs/:id/metrics/aggregated", s.aggregatedMetrics)
	e.GET("/runs/:id/metrics/query", s.queryMetrics)

	e.POST("/runs/:id/upload-file", s.uploadFile)
	e.GET("/runs/:id/files", s.listFiles)
	e.GET("/runs/:id/files/:file_id/download", s.downloadFile)

	e.GET("/dashboard/overview", s.dashboardOverview)
	e.GET("/projects/:id/dashboard", s.projectDashboard)
	e.GET("/projects/:id/runs/compare", s.compareRuns)
	e.GET("/runs/:id/visualizations/timeseries", s.timeseries)
	e.GET("/runs/:id/visualizations/multiplot", s.multiplot)

	e.GET("/audit-logs", s.auditLogs)
	e.GET("/teams/:id/audit-logs", s.teamAuditLogs)
	e.GET("/projects/:id/audit-logs", s.projectAuditLogs)

	e.POST("/teams/:id/roles", s.createRole)
	e.GET("/teams/:id/roles", s.listRoles)
	e.POST("/teams/:id/members/:user_id/role/:role_id", s.assignRole)
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func parseID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Health{Status: "healthy"})
}

func (s *Server) currentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, s.user)
}

func (s *Server) createTeam(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return detail(c, http.StatusBadRequest, "name is required")
	}

	team, err := s.store.CreateTeam(ctx, req.Name, req.Description)
	if err != nil {
		log.Printf("ERROR: failed to create team: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to create team")
	}
	s.audit(c, domain.AuditTeamCreated, fmt.Sprintf("team %q created", team.Name), &team.ID, nil, nil)
	return c.JSON(http.StatusOK, team)
}

func (s *Server) listTeams(c echo.Context) error {
	teams, err := s.store.ListTeams(c.Request().Context())
	if err != nil {
		log.Printf("ERROR: failed to list teams: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list teams")
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return c.JSON(http.StatusOK, teams)
}

func (s *Server) getTeam(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	team, err := s.store.GetTeam(c.Request().Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to get team: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get team")
	}
	if team == nil {
		return detail(c, http.StatusNotFound, "team not found")
	}
	return c.JSON(http.StatusOK, team)
}

func (s *Server) createProject(c echo.Context) error {
	ctx := c.Request().Context()

	teamID, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		log.Printf("ERROR: failed to get team: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get team")
	}
	if team == nil {
		return detail(c, http.StatusNotFound, "team not found")
	}

	var req domain.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return detail(c, http.StatusBadRequest, "name is required")
	}

	project, err := s.store.CreateProject(ctx, teamID, req.Name, req.Description)
	if err != nil {
		log.Printf("ERROR: failed to create project: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to create project")
	}
	s.audit(c, domain.AuditProjectCreated, fmt.Sprintf("project %q created", project.Name), &teamID, &project.ID, nil)
	return c.JSON(http.StatusOK, project)
}

func (s *Server) listProjects(c echo.Context) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	projects, err := s.store.ListProjects(c.Request().Context(), teamID)
	if err != nil {
		log.Printf("ERROR: failed to list projects: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list projects")
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) getProject(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid project id")
	}
	project, err := s.store.GetProject(c.Request().Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to get project: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get project")
	}
	if project == nil {
		return detail(c, http.StatusNotFound, "project not found")
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) initRun(c echo.Context) error {
	ctx := c.Request().Context()

	projectID, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid project id")
	}
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		log.Printf("ERROR: failed to get project: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get project")
	}
	if project == nil {
		return detail(c, http.StatusNotFound, "project not found")
	}

	var req domain.InitRunRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return detail(c, http.StatusBadRequest, "name is required")
	}

	run, err := s.store.CreateRun(ctx, projectID, req)
	if err != nil {
		log.Printf("ERROR: failed to create run: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to create run")
	}
	s.audit(c, domain.AuditRunCreated, fmt.Sprintf("run %q created", run.Name), &project.TeamID, &projectID, &run.ID)
	return c.JSON(http.StatusOK, run)
}

// lookupRun resolves the :id param to a run, answering 404/422 itself. The
// returned run is nil when a response was already written.
func (s *Server) lookupRun(c echo.Context) (*domain.Run, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, detail(c, http.StatusUnprocessableEntity, "invalid run id")
	}
	run, err := s.store.GetRun(c.Request().Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to get run: %v", err)
		return nil, detail(c, http.StatusInternalServerError, "failed to get run")
	}
	if run == nil {
		return nil, detail(c, http.StatusNotFound, "run not found")
	}
	return run, nil
}

func (s *Server) getRun(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

func (s *Server) finishRun(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	res, err := s.store.FinishRun(c.Request().Context(), run.ID)
	if err != nil {
		log.Printf("ERROR: failed to finish run: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to finish run")
	}
	if res.Message == "" {
		project, _ := s.store.GetProject(c.Request().Context(), run.ProjectID)
		var teamID *int64
		if project != nil {
			teamID = &project.TeamID
		}
		s.audit(c, domain.AuditRunFinished, fmt.Sprintf("run %q finished", run.Name), teamID, &run.ProjectID, &run.ID)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) logMetric(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}

	var req domain.LogMetricRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return detail(c, http.StatusBadRequest, "name is required")
	}

	m, err := s.store.InsertMetric(c.Request().Context(), run.ID, req)
	if err != nil {
		log.Printf("ERROR: failed to insert metric: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to insert metric")
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) listMetrics(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	metrics, err := s.store.ListMetrics(c.Request().Context(), run.ID)
	if err != nil {
		log.Printf("ERROR: failed to list metrics: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list metrics")
	}
	if metrics == nil {
		metrics = []domain.Metric{}
	}
	return c.JSON(http.StatusOK, metrics)
}

func (s *Server) aggregatedMetrics(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	summaries, err := s.store.AggregateMetrics(c.Request().Context(), run.ID)
	if err != nil {
		log.Printf("ERROR: failed to aggregate metrics: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to aggregate metrics")
	}
	return c.JSON(http.StatusOK, domain.AggregatedMetrics{RunID: run.ID, Metrics: summaries})
}

func (s *Server) queryMetrics(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}

	var q domain.MetricQuery
	q.MetricName = c.QueryParam("metric_name")
	if v := c.QueryParam("min_value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid min_value")
		}
		q.MinValue = &f
	}
	if v := c.QueryParam("max_value"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid max_value")
		}
		q.MaxValue = &f
	}
	if v := c.QueryParam("min_step"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid min_step")
		}
		q.MinStep = &n
	}
	if v := c.QueryParam("max_step"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid max_step")
		}
		q.MaxStep = &n
	}

	metrics, err := s.store.QueryMetrics(c.Request().Context(), run.ID, q)
	if err != nil {
		log.Printf("ERROR: failed to query metrics: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to query metrics")
	}
	if metrics == nil {
		metrics = []domain.Metric{}
	}
	return c.JSON(http.StatusOK, domain.MetricQueryResult{RunID: run.ID, Count: len(metrics), Results: metrics})
}

func (s *Server) uploadFile(c echo.Context) error {
	ctx := c.Request().Context()

	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return detail(c, http.StatusBadRequest, "file field is required")
	}
	src, err := fh.Open()
	if err != nil {
		log.Printf("ERROR: failed to open upload: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to read upload")
	}
	defer src.Close()

	storedName := uuid.NewString()
	dst, err := os.Create(filepath.Join(s.filesDir, storedName))
	if err != nil {
		log.Printf("ERROR: failed to store upload: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to store upload")
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Printf("ERROR: failed to store upload: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to store upload")
	}

	fileType := domain.FileType(c.QueryParam("file_type"))
	if fileType == "" {
		fileType = domain.FileTypeOther
	}

	rec, err := s.store.InsertFile(ctx, run.ID, fh.Filename, fileType, written, storedName)
	if err != nil {
		log.Printf("ERROR: failed to record upload: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to record upload")
	}
	s.audit(c, domain.AuditFileUploaded, fmt.Sprintf("file %q uploaded", rec.Filename), nil, &run.ProjectID, &run.ID)
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) listFiles(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	files, err := s.store.ListFiles(c.Request().Context(), run.ID)
	if err != nil {
		log.Printf("ERROR: failed to list files: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list files")
	}
	if files == nil {
		files = []domain.RunFile{}
	}
	return c.JSON(http.StatusOK, files)
}

func (s *Server) downloadFile(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	fileID, err := parseID(c, "file_id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid file id")
	}
	rec, storedName, err := s.store.GetFile(c.Request().Context(), run.ID, fileID)
	if err != nil {
		log.Printf("ERROR: failed to get file: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get file")
	}
	if rec == nil {
		return detail(c, http.StatusNotFound, "file not found")
	}
	return c.Attachment(filepath.Join(s.filesDir, storedName), rec.Filename)
}

func (s *Server) dashboardOverview(c echo.Context) error {
	overview, err := s.store.Overview(c.Request().Context())
	if err != nil {
		log.Printf("ERROR: failed to build overview: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to build overview")
	}
	return c.JSON(http.StatusOK, overview)
}

func (s *Server) projectDashboard(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid project id")
	}
	project, err := s.store.GetProject(c.Request().Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to get project: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get project")
	}
	if project == nil {
		return detail(c, http.StatusNotFound, "project not found")
	}
	dash, err := s.store.ProjectDashboard(c.Request().Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to build project dashboard: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to build project dashboard")
	}
	return c.JSON(http.StatusOK, dash)
}

func (s *Server) compareRuns(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid project id")
	}
	raw := c.QueryParam("run_ids")
	if raw == "" {
		return detail(c, http.StatusUnprocessableEntity, "run_ids is required")
	}
	var runIDs []int64
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "invalid run_ids")
		}
		runIDs = append(runIDs, n)
	}
	cmp, err := s.store.CompareRuns(c.Request().Context(), id, runIDs)
	if err != nil {
		log.Printf("ERROR: failed to compare runs: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to compare runs")
	}
	return c.JSON(http.StatusOK, cmp)
}

func (s *Server) timeseries(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	name := c.QueryParam("metric_name")
	if name == "" {
		return detail(c, http.StatusUnprocessableEntity, "metric_name is required")
	}
	points, err := s.store.Timeseries(c.Request().Context(), run.ID, name)
	if err != nil {
		log.Printf("ERROR: failed to build timeseries: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to build timeseries")
	}
	if points == nil {
		points = []domain.TimeseriesPoint{}
	}
	return c.JSON(http.StatusOK, domain.TimeseriesPlot{RunID: run.ID, MetricName: name, Points: points})
}

func (s *Server) multiplot(c echo.Context) error {
	run, err := s.lookupRun(c)
	if run == nil {
		return err
	}
	series, err := s.store.Multiplot(c.Request().Context(), run.ID)
	if err != nil {
		log.Printf("ERROR: failed to build multiplot: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to build multiplot")
	}
	return c.JSON(http.StatusOK, domain.MultiPlot{RunID: run.ID, Series: series})
}

func (s *Server) auditLimit(c echo.Context) int {
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func (s *Server) auditLogs(c echo.Context) error {
	logs, err := s.store.AuditLogs(c.Request().Context(), s.auditLimit(c), nil, nil)
	if err != nil {
		log.Printf("ERROR: failed to list audit logs: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list audit logs")
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) teamAuditLogs(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	logs, err := s.store.AuditLogs(c.Request().Context(), s.auditLimit(c), &id, nil)
	if err != nil {
		log.Printf("ERROR: failed to list audit logs: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list audit logs")
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) projectAuditLogs(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid project id")
	}
	logs, err := s.store.AuditLogs(c.Request().Context(), s.auditLimit(c), nil, &id)
	if err != nil {
		log.Printf("ERROR: failed to list audit logs: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list audit logs")
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Server) createRole(c echo.Context) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	team, err := s.store.GetTeam(c.Request().Context(), teamID)
	if err != nil {
		log.Printf("ERROR: failed to get team: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to get team")
	}
	if team == nil {
		return detail(c, http.StatusNotFound, "team not found")
	}

	var req domain.CreateRoleRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return detail(c, http.StatusBadRequest, "name is required")
	}

	role, err := s.store.CreateRole(c.Request().Context(), teamID, req)
	if err != nil {
		log.Printf("ERROR: failed to create role: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to create role")
	}
	s.audit(c, domain.AuditRoleCreated, fmt.Sprintf("role %q created", role.Name), &teamID, nil, nil)
	return c.JSON(http.StatusOK, role)
}

func (s *Server) listRoles(c echo.Context) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	roles, err := s.store.ListRoles(c.Request().Context(), teamID)
	if err != nil {
		log.Printf("ERROR: failed to list roles: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to list roles")
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	return c.JSON(http.StatusOK, roles)
}

func (s *Server) assignRole(c echo.Context) error {
	teamID, err := parseID(c, "id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid team id")
	}
	userID, err := parseID(c, "user_id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid user id")
	}
	roleID, err := parseID(c, "role_id")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid role id")
	}

	assignment, err := s.store.AssignRole(c.Request().Context(), teamID, userID, roleID)
	if err != nil {
		log.Printf("ERROR: failed to assign role: %v", err)
		return detail(c, http.StatusInternalServerError, "failed to assign role")
	}
	s.audit(c, domain.AuditRoleAssigned, fmt.Sprintf("role %d assigned to user %d", roleID, userID), &teamID, nil, nil)
	return c.JSON(http.StatusOK, assignment)
}

// audit records an entry without blocking the response on failure.
func (s *Server) audit(c echo.Context, action domain.AuditAction, message string, teamID, projectID, runID *int64) {
	if err := s.store.RecordAudit(c.Request().Context(), action, message, teamID, projectID, runID); err != nil {
		log.Printf("WARN: failed to record audit entry: %v", err)
	}
}
