package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/file"
)

type fileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) file.Repository {
	return &fileRepository{db: db}
}

func (repo *fileRepository) query() []file.File {
	files := make([]file.File, 0, len(repo.db.files))
	for _, f := range repo.db.files {
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files
}

func matchFile(f file.File, filter file.QueryFilter) bool {
	if filter.UploadedBy != "" && f.UploadedBy != filter.UploadedBy {
		return false
	}
	if filter.RelatedToKind != "" && f.RelatedTo.Kind != filter.RelatedToKind {
		return false
	}
	if filter.RelatedToID != "" && f.RelatedTo.ID != filter.RelatedToID {
		return false
	}
	return true
}

func (repo *fileRepository) CreateFile(_ context.Context, f file.File) (file.File, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	f.ID = uuid.NewString()
	repo.db.files[f.ID] = &f
	return f, nil
}

// resolve looks a file up by store id or public fileId. Callers hold the lock.
func (repo *fileRepository) resolve(id string) (*file.File, bool) {
	if f, ok := repo.db.files[id]; ok {
		return f, true
	}
	for _, f := range repo.db.files {
		if f.FileID == id {
			return f, true
		}
	}
	return nil, false
}

func (repo *fileRepository) GetFile(_ context.Context, id string) (file.File, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if f, ok := repo.resolve(id); ok {
		return *f, nil
	}
	return file.File{}, file.ErrNotFound
}

func (repo *fileRepository) FilterFiles(_ context.Context, filter file.QueryFilter, page core.Page) ([]file.File, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var matched []file.File
	for _, f := range repo.query() {
		if matchFile(f, filter) {
			matched = append(matched, f)
		}
	}
	return core.Paginate(matched, page), int64(len(matched)), nil
}

func (repo *fileRepository) DeleteFile(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	f, ok := repo.resolve(id)
	if !ok {
		return file.ErrNotFound
	}
	delete(repo.db.files, f.ID)
	return nil
}

func (repo *fileRepository) CountFiles(_ context.Context) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return int64(len(repo.db.files)), nil
}
