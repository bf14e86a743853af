package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch 监听配置文件变更，变更后重新加载并回调。
// 用于运行中轮换 GitHub Token / AI Key，无需重启进程。
// ctx 取消后停止监听。
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// 监听目录而非文件：编辑器保存常用 rename+create，直接 watch 文件会丢事件
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		target := filepath.Clean(path)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				// 编辑器保存会触发多次写事件，去抖后只加载一次
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(300*time.Millisecond, func() {
					cfg, err := Load(path)
					if err != nil {
						slog.Error("配置热加载失败", "path", path, "error", err)
						return
					}
					slog.Info("配置已热加载", "path", path)
					onChange(cfg)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("配置监听错误", "error", err)
			}
		}
	}()

	return nil
}
