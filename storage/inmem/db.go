package inmemdb

import (
	"sync"

	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/draft"
	"github.com/almajirisurvey/backend/core/file"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/user"
)

// DB is a map-backed store shared by the in-memory repositories. It backs the
// test suites and local development without a running document store.
type DB struct {
	mutex   sync.RWMutex
	users   map[string]*user.User
	schools map[string]*school.School
	beggars map[string]*beggar.Beggar
	drafts  map[string]*draft.Draft
	files   map[string]*file.File
}

func Open() (*DB, error) {
	db := &DB{
		users:   make(map[string]*user.User),
		schools: make(map[string]*school.School),
		beggars: make(map[string]*beggar.Beggar),
		drafts:  make(map[string]*draft.Draft),
		files:   make(map[string]*file.File),
	}
	return db, nil
}
