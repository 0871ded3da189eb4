package interfaces

import "errors"

var (
	// ErrLeaseNotFound 租约记录不存在
	ErrLeaseNotFound = errors.New("lease not found")
)
