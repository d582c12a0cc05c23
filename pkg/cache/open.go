package cache

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/beerxml/pkg/errors"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string // memory, file, sqlite, redis, mongo or none

	Dir string // file backend directory

	SQLitePath string // defaults to <Dir>/cache.db

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(nil), nil
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file cache needs a directory")
		}
		return NewFileCache(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			if opts.Dir == "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "sqlite cache needs a path")
			}
			path = filepath.Join(opts.Dir, "cache.db")
		}
		return NewSQLiteCache(path)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "redis cache needs an address")
		}
		return NewRedisCache(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo cache needs a URI")
		}
		db := opts.MongoDatabase
		if db == "" {
			db = "beerxml"
		}
		return NewMongoCache(ctx, opts.MongoURI, db)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", opts.Backend)
}
