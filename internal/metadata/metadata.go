package metadata

import (
	"encoding/json"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"signsight/internal/dao"
)

const videoKeyPrefix = "video:"

// MetadataDB keeps the history of processed videos, keyed by output name.
type MetadataDB struct {
	db     *badger.DB
	logger *logrus.Entry
}

func NewMetadataDB(dir string, logger *logrus.Entry) (*MetadataDB, error) {
	return open(badger.DefaultOptions(dir), logger)
}

// NewInMemoryMetadataDB is a MetadataDB that is not persisted to disk.
func NewInMemoryMetadataDB(logger *logrus.Entry) (*MetadataDB, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *logrus.Entry) (*MetadataDB, error) {
	db, err := badger.Open(opts.WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &MetadataDB{
		db:     db,
		logger: logger,
	}, nil
}

func (m *MetadataDB) Close() error {
	return m.db.Close()
}

func (m *MetadataDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (m *MetadataDB) Set(key, val []byte) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (m *MetadataDB) Delete(key []byte) error {
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// List returns copies of all values whose key starts with prefix.
func (m *MetadataDB) List(prefix []byte) ([][]byte, error) {
	var values [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (m *MetadataDB) SaveVideo(video *dao.ProcessedVideo) error {
	data, err := json.Marshal(video)
	if err != nil {
		return err
	}
	return m.Set([]byte(videoKeyPrefix+video.Name), data)
}

// GetVideo returns nil, nil when no record exists for name.
func (m *MetadataDB) GetVideo(name string) (*dao.ProcessedVideo, error) {
	val, err := m.Get([]byte(videoKeyPrefix + name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var video dao.ProcessedVideo
	if err := json.Unmarshal(val, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (m *MetadataDB) DeleteVideo(name string) error {
	return m.Delete([]byte(videoKeyPrefix + name))
}

// ListVideos returns a page of records, newest first, and the total count.
// A negative start is treated as 0.
func (m *MetadataDB) ListVideos(start, limit int) ([]dao.ProcessedVideo, int64, error) {
	values, err := m.List([]byte(videoKeyPrefix))
	if err != nil {
		return nil, 0, err
	}

	videos := make([]dao.ProcessedVideo, 0, len(values))
	for _, val := range values {
		var video dao.ProcessedVideo
		if err := json.Unmarshal(val, &video); err != nil {
			m.logger.WithError(err).Warn("skip malformed video record")
			continue
		}
		videos = append(videos, video)
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt().After(videos[j].CreatedAt())
	})

	total := int64(len(videos))
	if start < 0 {
		start = 0
	}
	if start >= len(videos) {
		return []dao.ProcessedVideo{}, total, nil
	}
	end := len(videos)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return videos[start:end], total, nil
}
