package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/draft"
	"github.com/almajirisurvey/backend/core/file"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/stats"
	"github.com/almajirisurvey/backend/core/user"
	"github.com/almajirisurvey/backend/storage/blob"
	inmemdb "github.com/almajirisurvey/backend/storage/inmem"
	testutil "github.com/almajirisurvey/backend/tests"
)

type testApp struct {
	server  Server
	usrSvc  *user.Service
	tokens  *user.TokenService
	usrRepo user.Repository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := testutil.NewConfig(t)
	validate, translator := testutil.NewValidator(t)

	db, err := inmemdb.Open()
	require.NoError(t, err)
	store, err := blob.NewLocalStorage(conf.Upload.Dir)
	require.NoError(t, err)

	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo)
	tokens := user.NewTokenService(conf)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NopLogger{},
		Validate:       validate,
		Translator:     translator,
		UserSvc:        usrSvc,
		TokenSvc:       tokens,
		SchoolSvc:      school.NewService(inmemdb.NewSchoolRepository(db)),
		BeggarSvc:      beggar.NewService(inmemdb.NewBeggarRepository(db)),
		DraftSvc:       draft.NewService(inmemdb.NewDraftRepository(db)),
		FileSvc:        file.NewService(inmemdb.NewFileRepository(db), store, testutil.NopLogger{}, conf),
		StatsSvc:       stats.NewService(inmemdb.NewStatsRepository(db)),
		DisableReqLogs: true,
	})
	return &testApp{server: server, usrSvc: usrSvc, tokens: tokens, usrRepo: usrRepo}
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()

	pair, err := app.tokens.GeneratePair(usr)
	require.NoError(t, err)
	return pair.AccessToken
}

func (app *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	}
	return rec, resp
}

func decodeData(t *testing.T, data, into interface{}) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, into))
}

func TestAPI_health(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_authFlow(t *testing.T) {
	app := newTestApp(t)

	rec, resp := app.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Aisha Bello", "email": "aisha@survey.ng", "password": "s3cr3t!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)

	var payload struct {
		User         user.User `json:"user"`
		AccessToken  string    `json:"accessToken"`
		RefreshToken string    `json:"refreshToken"`
	}
	decodeData(t, resp.Data, &payload)
	require.NotEmpty(t, payload.AccessToken)
	require.Regexp(t, `^INT\d{5}$`, payload.User.InterviewerID)

	t.Run("login", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"interviewerId": payload.User.InterviewerID, "password": "s3cr3t!",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
	})

	t.Run("login bad password", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"interviewerId": payload.User.InterviewerID, "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid credentials", resp.Message)
	})

	t.Run("me", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodGet, "/v1/auth/me", payload.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var usr user.User
		decodeData(t, resp.Data, &usr)
		assert.Equal(t, payload.User.ID, usr.ID)
	})

	t.Run("me without token", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodGet, "/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Access token required", resp.Message)
	})

	t.Run("refresh", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
			"refreshToken": payload.RefreshToken,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)

		rec, resp = app.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
			"refreshToken": payload.AccessToken, // wrong class
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("change password", func(t *testing.T) {
		rec, _ := app.do(t, http.MethodPost, "/v1/auth/change-password", payload.AccessToken, map[string]string{
			"currentPassword": "s3cr3t!", "newPassword": "n3wp4ss!",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = app.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"interviewerId": payload.User.InterviewerID, "password": "n3wp4ss!",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("validation failure carries field errors", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
			"name": "A", "email": "not-an-email", "password": "x",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Validation failed", resp.Message)
		assert.NotEmpty(t, resp.Errors)
	})
}

func TestAPI_roleEnforcement(t *testing.T) {
	app := newTestApp(t)

	interviewer := testutil.CreateUser(t, app.usrRepo, "Interviewer", "INT11111", "int@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	supervisor := testutil.CreateUser(t, app.usrRepo, "Supervisor", "SUP11111", "sup@survey.ng", "s3cr3t!", user.RoleSupervisor, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "ADMIN11111", "admin@survey.ng", "s3cr3t!", user.RoleAdmin, true)

	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{name: "users denied to interviewer", path: "/v1/users", token: app.token(t, interviewer), wantCode: http.StatusForbidden},
		{name: "users denied to supervisor", path: "/v1/users", token: app.token(t, supervisor), wantCode: http.StatusForbidden},
		{name: "users allowed to admin", path: "/v1/users", token: app.token(t, admin), wantCode: http.StatusOK},
		{name: "analytics denied to interviewer", path: "/v1/analytics/dashboard", token: app.token(t, interviewer), wantCode: http.StatusForbidden},
		{name: "analytics allowed to supervisor", path: "/v1/analytics/dashboard", token: app.token(t, supervisor), wantCode: http.StatusOK},
		{name: "analytics allowed to admin", path: "/v1/analytics/dashboard", token: app.token(t, admin), wantCode: http.StatusOK},
		{name: "no token", path: "/v1/analytics/dashboard", token: "", wantCode: http.StatusUnauthorized},
		{name: "garbage token", path: "/v1/schools", token: "garbage", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := app.do(t, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	t.Run("deactivated user is cut off on the next request", func(t *testing.T) {
		token := app.token(t, interviewer)
		rec, _ := app.do(t, http.MethodGet, "/v1/schools", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		_, err := app.usrSvc.ToggleActive(context.Background(), interviewer.ID)
		require.NoError(t, err)

		rec, resp := app.do(t, http.MethodGet, "/v1/schools", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or inactive user", resp.Message)
	})
}

func TestAPI_schools(t *testing.T) {
	app := newTestApp(t)

	owner := testutil.CreateUser(t, app.usrRepo, "Owner", "INT11111", "owner@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	other := testutil.CreateUser(t, app.usrRepo, "Other", "INT22222", "other@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	ownerToken := app.token(t, owner)
	otherToken := app.token(t, other)

	rec, resp := app.do(t, http.MethodPost, "/v1/schools", ownerToken, testutil.SchoolPayload("SCH001"))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)

	var sch school.School
	decodeData(t, resp.Data, &sch)
	assert.Equal(t, "INT11111", sch.InterviewerID, "record stamped with the caller's id")
	assert.Equal(t, school.StatusDraft, sch.Status)

	t.Run("duplicate code", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodPost, "/v1/schools", otherToken, testutil.SchoolPayload("SCH001"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "School code already exists", resp.Message)
	})

	t.Run("list with pagination envelope", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodGet, "/v1/schools?page=1&limit=5", ownerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, 1, resp.Pagination.Page)
		assert.Equal(t, 5, resp.Pagination.Limit)
		assert.EqualValues(t, 1, resp.Pagination.Total)
		assert.False(t, resp.Pagination.HasNext)
	})

	t.Run("my-schools pins ownership", func(t *testing.T) {
		_, resp := app.do(t, http.MethodGet, "/v1/schools/my-schools", otherToken, nil)
		require.NotNil(t, resp.Pagination)
		assert.EqualValues(t, 0, resp.Pagination.Total)
	})

	t.Run("students listing", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodGet, "/v1/schools/students?gender=MALE", ownerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, resp.Pagination)
		assert.EqualValues(t, 1, resp.Pagination.Total)
	})

	t.Run("update by non-owner", func(t *testing.T) {
		rec, _ := app.do(t, http.MethodPut, "/v1/schools/"+sch.ID, otherToken, map[string]string{"name": "Hijacked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update by owner", func(t *testing.T) {
		rec, resp := app.do(t, http.MethodPut, "/v1/schools/"+sch.ID, ownerToken, map[string]string{"status": school.StatusPublished})
		require.Equal(t, http.StatusOK, rec.Code)
		var got school.School
		decodeData(t, resp.Data, &got)
		assert.Equal(t, school.StatusPublished, got.Status)
	})

	t.Run("retrieve missing", func(t *testing.T) {
		rec, _ := app.do(t, http.MethodGet, "/v1/schools/ghost", ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec, _ := app.do(t, http.MethodDelete, "/v1/schools/"+sch.ID, ownerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec, _ = app.do(t, http.MethodGet, "/v1/schools/"+sch.ID, ownerToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPI_beggars(t *testing.T) {
	app := newTestApp(t)

	owner := testutil.CreateUser(t, app.usrRepo, "Owner", "INT11111", "owner@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	token := app.token(t, owner)

	rec, resp := app.do(t, http.MethodPost, "/v1/beggars", token, testutil.BeggarPayload("BEG001"))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)

	var bg beggar.Beggar
	decodeData(t, resp.Data, &bg)
	assert.Equal(t, "BEG001", bg.BeggarID)

	t.Run("filter by sex", func(t *testing.T) {
		_, resp := app.do(t, http.MethodGet, "/v1/beggars?sex=FEMALE", token, nil)
		require.NotNil(t, resp.Pagination)
		assert.EqualValues(t, 0, resp.Pagination.Total)
	})

	t.Run("invalid payload", func(t *testing.T) {
		nb := testutil.BeggarPayload("BEG002")
		nb.Sex = "OTHER"
		rec, resp := app.do(t, http.MethodPost, "/v1/beggars", token, nb)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation failed", resp.Message)
	})
}

func TestAPI_drafts(t *testing.T) {
	app := newTestApp(t)

	owner := testutil.CreateUser(t, app.usrRepo, "Owner", "INT11111", "owner@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "ADMIN11111", "admin@survey.ng", "s3cr3t!", user.RoleAdmin, true)
	token := app.token(t, owner)

	save := map[string]interface{}{
		"draftId": "draft-1", "type": "SCHOOL", "data": map[string]interface{}{"step": 1},
	}

	// first autosave creates, the second lands on the same record
	rec, resp := app.do(t, http.MethodPost, "/v1/drafts/save", token, save)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)
	var d draft.Draft
	decodeData(t, resp.Data, &d)

	rec, resp = app.do(t, http.MethodPost, "/v1/drafts/save", token, save)
	require.Equal(t, http.StatusOK, rec.Code)
	var d2 draft.Draft
	decodeData(t, resp.Data, &d2)
	assert.Equal(t, d.ID, d2.ID)

	t.Run("drafts are private even to admins", func(t *testing.T) {
		rec, _ := app.do(t, http.MethodGet, "/v1/drafts/"+d.ID, app.token(t, admin), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = app.do(t, http.MethodGet, "/v1/drafts/"+d.ID, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("listing is owner-scoped", func(t *testing.T) {
		_, resp := app.do(t, http.MethodGet, "/v1/drafts", token, nil)
		require.NotNil(t, resp.Pagination)
		assert.EqualValues(t, 1, resp.Pagination.Total)

		_, resp = app.do(t, http.MethodGet, "/v1/drafts", app.token(t, admin), nil)
		require.NotNil(t, resp.Pagination)
		assert.EqualValues(t, 0, resp.Pagination.Total)
	})
}

func TestAPI_files(t *testing.T) {
	app := newTestApp(t)

	owner := testutil.CreateUser(t, app.usrRepo, "Owner", "INT11111", "owner@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	token := app.token(t, owner)

	uploadReq := func(t *testing.T, filename, mimeType, content string) (*httptest.ResponseRecorder, Response) {
		t.Helper()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
		hdr.Set("Content-Type", mimeType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/files/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.server.ServeHTTP(rec, req)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec, resp
	}

	rec, resp := uploadReq(t, "photo.jpg", "image/jpeg", "jpeg-bytes")
	require.Equal(t, http.StatusCreated, rec.Code, "body: %v", resp)

	var f file.File
	decodeData(t, resp.Data, &f)
	assert.Regexp(t, `^FILE_\d+_[0-9a-f]{10}$`, f.FileID)

	t.Run("download", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/files/"+f.FileID+"/download", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "jpeg-bytes", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "photo.jpg")
	})

	t.Run("unsupported type", func(t *testing.T) {
		rec, resp := uploadReq(t, "malware.exe", "application/octet-stream", "MZ")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "File type is not allowed", resp.Message)
	})

	t.Run("no file part", func(t *testing.T) {
		rec, _ := app.do(t, http.MethodPost, "/v1/files/upload", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_analytics(t *testing.T) {
	app := newTestApp(t)

	supervisor := testutil.CreateUser(t, app.usrRepo, "Supervisor", "SUP11111", "sup@survey.ng", "s3cr3t!", user.RoleSupervisor, true)
	interviewer := testutil.CreateUser(t, app.usrRepo, "Interviewer", "INT11111", "int@survey.ng", "s3cr3t!", user.RoleInterviewer, true)
	supToken := app.token(t, supervisor)
	intToken := app.token(t, interviewer)

	_, resp := app.do(t, http.MethodPost, "/v1/beggars", intToken, testutil.BeggarPayload("BEG001"))
	require.True(t, resp.Success)

	rec, resp := app.do(t, http.MethodGet, "/v1/analytics/beggars", supToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep stats.BeggarReport
	decodeData(t, resp.Data, &rep)
	assert.EqualValues(t, 1, rep.Overview.TotalBeggars)
	assert.Equal(t, float64(100), rep.Overview.ActivePercentage)

	rec, resp = app.do(t, http.MethodGet, "/v1/analytics/interviewer/INT11111", supToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var irep stats.InterviewerReport
	decodeData(t, resp.Data, &irep)
	assert.EqualValues(t, 1, irep.Beggars.Total)

	// raw JSON keeps empty distributions as [], never null
	raw, err := json.Marshal(rep.Demographics.ByNationality)
	require.NoError(t, err)
	assert.NotEqual(t, "null", string(raw))
}
