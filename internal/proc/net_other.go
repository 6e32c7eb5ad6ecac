//go:build !linux

package proc

import (
	"errors"

	"github.com/pranshuparmar/socktest/pkg/model"
)

var ErrNotFound = errors.New("socket tables are only available on linux")

func LookupInode(inode uint64) (*model.SocketInfo, error) {
	return nil, ErrNotFound
}
