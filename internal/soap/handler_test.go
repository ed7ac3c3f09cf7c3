package soap

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tracker/internal/config"
	"tracker/internal/handlers"
	"tracker/internal/repository"
	"tracker/internal/services"
	"tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail struct {
		Code string `xml:"code"`
	} `xml:"detail"`
}

type testEnvelope struct {
	Body struct {
		Inner []byte     `xml:",innerxml"`
		Fault *testFault `xml:"Fault"`
	} `xml:"Body"`
}

type client struct {
	t *testing.T
	r *gin.Engine
}

func setup(t *testing.T) client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.InitDB("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.New(db, logger)
	registry := session.NewRegistry(session.NewMemoryStore(), time.Hour, logger)
	cfg := config.Config{SessionSecret: "test-secret-12345678901234567890123456789012"}

	r := handlers.NewHandler(cfg, logger, registry, svc).SetupRouter(nil, NewHandler(svc, registry, logger).Mount)
	return client{t: t, r: r}
}

func (c client) raw(body string) (*httptest.ResponseRecorder, testEnvelope) {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/soap", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	var env testEnvelope
	require.NoError(c.t, xml.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// call sends one operation and returns either its response or its fault.
func (c client) call(op, inner string) (*Response, *testFault) {
	c.t.Helper()
	body := fmt.Sprintf(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="%s" xmlns:tns="%s">
  <soap:Body><tns:%s>%s</tns:%s></soap:Body>
</soap:Envelope>`, EnvelopeNS, Namespace, op, inner, op)

	w, env := c.raw(body)
	assert.Equal(c.t, "text/xml; charset=utf-8", w.Header().Get("Content-Type"))
	if env.Body.Fault != nil {
		assert.Equal(c.t, http.StatusInternalServerError, w.Code)
		return nil, env.Body.Fault
	}
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var resp Response
	require.NoError(c.t, xml.Unmarshal(env.Body.Inner, &resp), string(env.Body.Inner))
	assert.Equal(c.t, op+"Response", resp.XMLName.Local)
	return &resp, nil
}

func (c client) login() string {
	c.t.Helper()
	creds := `<username>alice</username><password>pw123</password>`
	_, fault := c.call("Register", creds)
	require.Nil(c.t, fault)
	resp, fault := c.call("Login", creds)
	require.Nil(c.t, fault)
	require.NotEmpty(c.t, resp.Token)
	require.NotNil(c.t, resp.ExpiresAt)
	return resp.Token
}

func sid(token string) string {
	return "<sessionId>" + token + "</sessionId>"
}

func TestAuthOperations(t *testing.T) {
	c := setup(t)
	token := c.login()

	_, fault := c.call("Register", `<username>alice</username><password>x</password>`)
	require.NotNil(t, fault)
	assert.Equal(t, "soap:Client", fault.Code)
	assert.Equal(t, "USER_EXISTS", fault.Detail.Code)

	_, wrong := c.call("Login", `<username>alice</username><password>bad</password>`)
	_, unknown := c.call("Login", `<username>ghost</username><password>bad</password>`)
	require.NotNil(t, wrong)
	require.NotNil(t, unknown)
	assert.Equal(t, "INVALID_CREDENTIALS", wrong.Detail.Code)
	assert.Equal(t, *wrong, *unknown)

	resp, fault := c.call("GetProfile", sid(token))
	require.Nil(t, fault)
	assert.Equal(t, "alice", resp.User.Username)

	resp, fault = c.call("Logout", sid(token))
	require.Nil(t, fault)
	assert.True(t, resp.Success)

	_, fault = c.call("GetProfile", sid(token))
	require.NotNil(t, fault)
	assert.Equal(t, "UNAUTHORIZED", fault.Detail.Code)

	_, fault = c.call("Logout", sid("unknown"))
	assert.Nil(t, fault)
}

func TestIssueOperations(t *testing.T) {
	c := setup(t)
	token := c.login()

	resp, fault := c.call("CreateLabel", sid(token)+`<name>bug</name><color>f00</color>`)
	require.Nil(t, fault)
	labelID := resp.Label.ID
	assert.Equal(t, "#FF0000", resp.Label.Color)

	resp, fault = c.call("CreateIssue", sid(token)+
		`<title>Bug</title><status>open</status><priority>high</priority><creator>alice</creator>`+
		`<labels><labelId>`+labelID+`</labelId></labels>`)
	require.Nil(t, fault)
	created := resp.Issue
	assert.Len(t, created.ID, 36)
	require.Len(t, created.Labels, 1)

	resp, fault = c.call("GetIssue", sid(token)+"<id>"+created.ID+"</id>")
	require.Nil(t, fault)
	assert.Equal(t, created.Title, resp.Issue.Title)
	assert.Equal(t, created.Priority, resp.Issue.Priority)

	resp, fault = c.call("UpdateIssue", sid(token)+"<id>"+created.ID+"</id><status>closed</status>")
	require.Nil(t, fault)
	assert.Equal(t, "closed", resp.Issue.Status)
	assert.Equal(t, "high", resp.Issue.Priority)
	assert.Len(t, resp.Issue.Labels, 1)

	resp, fault = c.call("UpdateIssue", sid(token)+"<id>"+created.ID+"</id><labels></labels>")
	require.Nil(t, fault)
	assert.Empty(t, resp.Issue.Labels)

	_, fault = c.call("UpdateIssue", sid(token)+"<id>"+created.ID+"</id>")
	require.NotNil(t, fault)
	assert.Equal(t, "NO_UPDATE_FIELDS", fault.Detail.Code)

	resp, fault = c.call("ListIssues", sid(token)+"<page>0</page><perPage>150</perPage>")
	require.Nil(t, fault)
	assert.Len(t, resp.Issues, 1)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 100, resp.Pagination.PerPage)

	resp, fault = c.call("DeleteIssue", sid(token)+"<id>"+created.ID+"</id>")
	require.Nil(t, fault)
	assert.True(t, resp.Success)

	_, fault = c.call("GetIssue", sid(token)+"<id>"+created.ID+"</id>")
	require.NotNil(t, fault)
	assert.Equal(t, "NOT_FOUND", fault.Detail.Code)
	assert.Equal(t, "soap:Client", fault.Code)
}

func TestCommentAndMilestoneOperations(t *testing.T) {
	c := setup(t)
	token := c.login()

	_, fault := c.call("CreateComment", sid(token)+"<issueId>missing</issueId><content>hi</content><author>alice</author>")
	require.NotNil(t, fault)
	assert.Equal(t, "NOT_FOUND", fault.Detail.Code)

	resp, fault := c.call("CreateIssue", sid(token)+"<title>t</title><creator>alice</creator>")
	require.Nil(t, fault)
	issueID := resp.Issue.ID

	resp, fault = c.call("CreateComment", sid(token)+"<issueId>"+issueID+"</issueId><content>hi</content><author>alice</author>")
	require.Nil(t, fault)
	commentID := resp.Comment.ID

	resp, fault = c.call("ListComments", sid(token)+"<issueId>"+issueID+"</issueId>")
	require.Nil(t, fault)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, commentID, resp.Comments[0].ID)

	resp, fault = c.call("CreateMilestone", sid(token)+"<title>v1</title><dueDate>2026-12-31</dueDate>")
	require.Nil(t, fault)
	require.NotNil(t, resp.Milestone.DueDate)
	assert.Equal(t, "2026-12-31", *resp.Milestone.DueDate)

	_, fault = c.call("CreateMilestone", sid(token)+"<title>v2</title><dueDate>tomorrow</dueDate>")
	require.NotNil(t, fault)
	assert.Equal(t, "INVALID_INPUT", fault.Detail.Code)
}

func TestMalformedRequests(t *testing.T) {
	c := setup(t)

	_, env := c.raw("not xml at all")
	require.NotNil(t, env.Body.Fault)
	assert.Equal(t, "INVALID_INPUT", env.Body.Fault.Detail.Code)

	_, fault := c.call("Teleport", "")
	require.NotNil(t, fault)
	assert.Contains(t, fault.String, "unknown operation")

	_, fault = c.call("ListIssues", "")
	require.NotNil(t, fault)
	assert.Equal(t, "UNAUTHORIZED", fault.Detail.Code)
}

func TestFaultCodeFor(t *testing.T) {
	assert.Equal(t, "soap:Server", FaultCodeFor(services.KindDBError))
	assert.Equal(t, "soap:Server", FaultCodeFor(services.KindHashError))
	assert.Equal(t, "soap:Client", FaultCodeFor(services.KindInvalidColor))
	assert.Equal(t, "soap:Client", FaultCodeFor(services.KindInvalidCredentials))
}
