//go:build unix

package history

import (
	"os"

	"golang.org/x/sys/unix"
)

type fileLock struct {
	file *os.File
}

func (s *FileStore) lock() (*fileLock, error) {
	file, err := s.openLockFile()
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		_ = file.Close()
		return nil, err
	}
	return &fileLock{file: file}, nil
}

func (l *fileLock) release() error {
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
