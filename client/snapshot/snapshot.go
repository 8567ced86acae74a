// Package snapshot 提供页面存储状态的本地持久化
// 每次状态变化写入，启动时读取一次，避免首次拉取期间的空白状态
package snapshot

import (
	"os"
	"path/filepath"
	"time"

	"github.com/astralvault/page-sync-service/client/entity"
	"github.com/astralvault/page-sync-service/pkg/fileurl"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Snapshot 页面存储的完整可恢复状态
type Snapshot struct {
	User    *entity.User   `json:"user"`
	Pages   []*entity.Page `json:"pages"`
	SavedAt int64          `json:"savedAt"` // 毫秒时间戳
}

// Save writes the snapshot atomically: temp file then rename
// Save 原子写入快照：先写临时文件再改名
func Save(path string, s *Snapshot) error {
	s.SavedAt = time.Now().UnixMilli()

	buf, err := sonic.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}

	if !fileurl.IsExist(path) {
		if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
			return errors.Wrap(err, "create snapshot path")
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close snapshot")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

// Load 读取快照，文件不存在返回 nil 快照而不是错误
func Load(path string) (*Snapshot, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read snapshot")
	}

	s := &Snapshot{}
	if err := sonic.Unmarshal(buf, s); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return s, nil
}
