package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// AcquireSession 从连接池中签出一条专用连接，并返回绑定在该连接上的 GORM 会话。
// 调用方必须调用 release（通常 defer），无论请求成功与否都会归还连接。
func AcquireSession(ctx context.Context, db *gorm.DB) (*gorm.DB, func(), error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	sess := db.Session(&gorm.Session{Context: ctx, NewDB: true})
	sess.Statement.ConnPool = conn
	release := func() { _ = conn.Close() }
	return sess, release, nil
}
