package file_test

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/file"
	"github.com/almajirisurvey/backend/core/user"
	"github.com/almajirisurvey/backend/storage/blob"
	inmemdb "github.com/almajirisurvey/backend/storage/inmem"
	testutil "github.com/almajirisurvey/backend/tests"
)

func setup(t *testing.T) (*file.Service, file.Blob) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	store, err := blob.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := file.NewService(inmemdb.NewFileRepository(db), store, testutil.NopLogger{}, testutil.NewConfig(t))
	return svc, store
}

func upload(name, mime, content string) (file.Upload, *strings.Reader) {
	return file.Upload{
		OriginalName: name,
		MimeType:     mime,
		Size:         int64(len(content)),
	}, strings.NewReader(content)
}

func TestService_Upload(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	up, r := upload("photo.jpg", "image/jpeg", "jpeg-bytes")
	f, err := svc.Upload(ctx, up, r, "INT11111")
	require.NoError(t, err)

	assert.Regexp(t, `^FILE_\d+_[0-9a-f]{10}$`, f.FileID)
	assert.Equal(t, "photo.jpg", f.OriginalName)
	assert.True(t, strings.HasSuffix(f.Filename, ".jpg"))
	assert.EqualValues(t, len("jpeg-bytes"), f.Size)
	assert.Equal(t, "/uploads/"+f.Filename, f.URL)
	assert.Equal(t, "INT11111", f.UploadedBy)
	assert.True(t, f.RelatedTo.IsZero())

	rc, err := store.Open(ctx, f.Filename)
	require.NoError(t, err)
	rc.Close()

	t.Run("unsupported type", func(t *testing.T) {
		up, r := upload("malware.exe", "application/octet-stream", "MZ")
		_, err := svc.Upload(ctx, up, r, "INT11111")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, vErr.Err, file.ErrUnsupportedType)
	})

	t.Run("declared size too large", func(t *testing.T) {
		up, r := upload("big.jpg", "image/jpeg", "x")
		up.Size = 2 << 20 // over the 1MB test ceiling
		_, err := svc.Upload(ctx, up, r, "INT11111")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, vErr.Err, file.ErrFileTooLarge)
	})

	t.Run("actual size too large despite small declared size", func(t *testing.T) {
		content := strings.Repeat("a", (1<<20)+1)
		up, r := upload("sneaky.jpg", "image/jpeg", content)
		up.Size = 10 // lie
		_, err := svc.Upload(ctx, up, r, "INT11111")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, vErr.Err, file.ErrFileTooLarge)
	})

	t.Run("relatedTo kind outside the known set", func(t *testing.T) {
		up, r := upload("photo.png", "image/png", "png")
		up.RelatedToKind = "BOGUS"
		up.RelatedToID = "sch-1"
		_, err := svc.Upload(ctx, up, r, "INT11111")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, vErr.Err, file.ErrBadRelatedKind)
		assert.Equal(t, "relatedToType", vErr.Fields[0].Field)
	})

	t.Run("relatedTo must be both-or-neither", func(t *testing.T) {
		up, r := upload("photo.png", "image/png", "png")
		up.RelatedToKind = file.RelatedSchool
		_, err := svc.Upload(ctx, up, r, "INT11111")
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.ErrorIs(t, vErr.Err, file.ErrBadRelatedTo)

		up, r = upload("photo.png", "image/png", "png")
		up.RelatedToKind = file.RelatedSchool
		up.RelatedToID = "sch-1"
		f, err := svc.Upload(ctx, up, r, "INT11111")
		require.NoError(t, err)
		assert.Equal(t, file.RelatedSchool, f.RelatedTo.Kind)
		assert.Equal(t, "sch-1", f.RelatedTo.ID)
	})
}

// failingRepo rejects the metadata write after the blob was already stored.
type failingRepo struct {
	file.Repository
}

func (failingRepo) CreateFile(context.Context, file.File) (file.File, error) {
	return file.File{}, errors.New("metadata write failed")
}

func TestService_Upload_noOrphanOnFailedMetadataWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := file.NewService(failingRepo{}, store, testutil.NopLogger{}, testutil.NewConfig(t))
	ctx := context.Background()

	up, r := upload("photo.jpg", "image/jpeg", "jpeg-bytes")
	_, err = svc.Upload(ctx, up, r, "INT11111")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed metadata write must not leave an orphan blob")
}

func TestService_Download(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	up, r := upload("report.csv", "text/csv", "a,b,c")
	f, err := svc.Upload(ctx, up, r, "INT11111")
	require.NoError(t, err)

	got, rc, err := svc.Download(ctx, f.FileID)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, f.FileID, got.FileID)

	// the store id resolves too
	byStoreID, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.FileID, byStoreID.FileID)

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(content))

	_, _, err = svc.Download(ctx, "FILE_0_ghost")
	assert.ErrorIs(t, err, file.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	owner := user.User{InterviewerID: "INT11111", Role: user.RoleInterviewer}
	other := user.User{InterviewerID: "INT22222", Role: user.RoleInterviewer}
	admin := user.User{InterviewerID: "ADMIN11111", Role: user.RoleAdmin}

	up, r := upload("photo.jpg", "image/jpeg", "jpeg-bytes")
	f, err := svc.Upload(ctx, up, r, owner.InterviewerID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "FILE_0_ghost", &other), file.ErrNotFound)
	assert.True(t, core.IsPermissionDenied(svc.Delete(ctx, f.FileID, &other)))

	require.NoError(t, svc.Delete(ctx, f.FileID, &owner))
	_, err = svc.Get(ctx, f.FileID)
	assert.ErrorIs(t, err, file.ErrNotFound)
	_, err = store.Open(ctx, f.Filename)
	assert.Error(t, err, "blob removed alongside metadata")

	t.Run("admin may delete foreign uploads", func(t *testing.T) {
		up, r := upload("photo2.jpg", "image/jpeg", "jpeg-bytes")
		f, err := svc.Upload(ctx, up, r, owner.InterviewerID)
		require.NoError(t, err)
		assert.NoError(t, svc.Delete(ctx, f.FileID, &admin))
	})

	t.Run("missing blob does not fail the delete", func(t *testing.T) {
		up, r := upload("photo3.jpg", "image/jpeg", "jpeg-bytes")
		f, err := svc.Upload(ctx, up, r, owner.InterviewerID)
		require.NoError(t, err)
		require.NoError(t, store.Remove(ctx, f.Filename))
		assert.NoError(t, svc.Delete(ctx, f.FileID, &owner))
	})
}

func TestService_Filter(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	page := core.Page{Number: 1, Limit: 10}

	up, r := upload("a.jpg", "image/jpeg", "a")
	up.RelatedToKind, up.RelatedToID = file.RelatedSchool, "sch-1"
	_, err := svc.Upload(ctx, up, r, "INT11111")
	require.NoError(t, err)

	up, r = upload("b.jpg", "image/jpeg", "b")
	_, err = svc.Upload(ctx, up, r, "INT22222")
	require.NoError(t, err)

	_, total, err := svc.Filter(ctx, file.QueryFilter{}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	files, total, err := svc.Filter(ctx, file.QueryFilter{UploadedBy: "INT11111"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, files, 1)
	assert.Equal(t, "a.jpg", files[0].OriginalName)

	_, total, err = svc.Filter(ctx, file.QueryFilter{RelatedToKind: file.RelatedSchool, RelatedToID: "sch-1"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
