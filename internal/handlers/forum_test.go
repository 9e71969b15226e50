package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/models"
)

func TestForumReads(t *testing.T) {
	f := newFixture(t)
	f.forum.categories = []models.ForumCategory{{Name: "Investing"}}
	f.forum.posts = []models.ForumPost{{Title: "Index funds"}}

	rec := f.do(http.MethodGet, "/api/forum/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []models.ForumCategory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Equal(t, "Investing", cats[0].Name)

	rec = f.do(http.MethodGet, "/api/forum/posts?category=c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", f.forum.category)

	f.forum.posts = nil
	rec = f.do(http.MethodGet, "/api/forum/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestForumReadFailure(t *testing.T) {
	f := newFixture(t)
	f.forum.err = errors.New("mongo down")

	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/api/forum/categories", "").Code)
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/api/forum/posts?category=c1", "").Code)
}

func TestCreateForumPost(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.h.Tokens.Sign("user-9", auth.RoleUser, false)
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/api/forum/posts", `{"categoryId":"c1","title":"t","body":"b"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/forum/posts", `{"categoryId":"c1","title":"","body":"b"}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/forum/posts", `{"categoryId":"c1","title":"t","body":"b"}`, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.forum.created, 1)
	assert.Equal(t, "user-9", f.forum.created[0].AuthorID)
}

func TestUploadDisabled(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/upload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeUploader struct {
	folder string
	name   string
}

func (f *fakeUploader) UploadFileFromHeader(_ context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	f.folder, f.name = folder, fh.Filename
	return "https://res.cloudinary.com/demo/" + fh.Filename, nil
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAttachment(t *testing.T) {
	f := newFixture(t)
	up := &fakeUploader{}
	f.h.Uploader = up

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	body, ctype := multipartBody(t, "chart.png", png)
	rec := f.do(http.MethodPost, "/api/upload", body.String(), "Content-Type", ctype)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://res.cloudinary.com/demo/chart.png", decodeBody(t, rec)["url"])
	assert.Equal(t, "lkhn/forum", up.folder)

	body, ctype = multipartBody(t, "evil.png", []byte("#!/bin/sh\necho hi\n"))
	rec = f.do(http.MethodPost, "/api/upload", body.String(), "Content-Type", ctype)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
