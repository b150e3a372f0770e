package inmemdb

import (
	"sync"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
)

type (
	// DB keeps every table in memory. Used by tests.
	DB struct {
		user     *userTable
		progress *progressTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	progressTable struct {
		table map[progress.Key]*progress.Record
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		progress: &progressTable{table: make(map[progress.Key]*progress.Record)},
	}
}
