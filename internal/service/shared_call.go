package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedCallTimeout 合并调用自身的超时，与任一调用方的取消无关
const sharedCallTimeout = 15 * time.Second

// sharedDo 合并同 key 的并发调用
// 共享调用不继承调用方的取消，每个调用方只按自己的 ctx 等待结果
func sharedDo(ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := g.DoChan(key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return fn(sctx)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
