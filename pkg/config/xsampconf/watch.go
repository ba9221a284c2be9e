package xsampconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/tracekit/pkg/observability/xsampling"
)

// ReloadCallback 配置重载回调函数
// sampler 为重载成功换入的采样器，err 表示重载是否成功
type ReloadCallback func(sampler xsampling.Sampler, err error)

// Watcher 采样配置文件监视器
//
// 监控配置文件变更，重新构建采样器并换入 Dynamic。
// 构建失败时保留旧采样器，只通过回调上报错误。
type Watcher struct {
	dynamic  *Dynamic
	path     string
	watcher  *fsnotify.Watcher
	callback ReloadCallback
	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	timer    *time.Timer // debounce 定时器，Stop() 时需要取消
}

// WatchOption 监视器配置选项
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	callback ReloadCallback
}

func defaultWatchOptions() *watchOptions {
	return &watchOptions{
		debounce: 100 * time.Millisecond,
	}
}

// WithDebounce 设置防抖时间
// 在指定时间内的多次变更只触发一次重载，默认 100ms
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// WithOnReload 设置重载回调
func WithOnReload(callback ReloadCallback) WatchOption {
	return func(o *watchOptions) {
		o.callback = callback
	}
}

// Watch 创建采样配置监视器
//
// path 指向 Load 能解析的配置文件，dynamic 是决策路径上
// 正在使用的可热替换采样器。返回的 Watcher 需要调用
// Start()/StartAsync() 开始监视，Stop() 停止。
//
// 示例:
//
//	sampler, _ := xsampconf.Load("/etc/app/sampling.yaml")
//	dyn, _ := xsampconf.NewDynamic(sampler)
//	w, _ := xsampconf.Watch("/etc/app/sampling.yaml", dyn)
//	w.StartAsync()
//	defer w.Stop()
func Watch(path string, dynamic *Dynamic, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if dynamic == nil {
		return nil, ErrNilSampler
	}
	if _, err := detectFormat(path); err != nil {
		return nil, err
	}

	options := defaultWatchOptions()
	for _, opt := range opts {
		opt(options)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xsampconf: failed to create watcher: %w", err)
	}

	// 监视配置文件所在目录（而非文件本身）
	// 因为编辑器保存文件时可能先删除再创建，直接监视文件会丢失事件
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(
			fmt.Errorf("xsampconf: failed to watch directory %s: %w", dir, err),
			closeErr,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dynamic:  dynamic,
		path:     path,
		watcher:  fsWatcher,
		callback: options.callback,
		debounce: options.debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start 启动监视
// 此方法会阻塞，通常应在 goroutine 中调用
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.run()
}

// StartAsync 异步启动监视
// 在后台 goroutine 中运行，立即返回
func (w *Watcher) StartAsync() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
}

// Stop 停止监视
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	// 停止 debounce 定时器，防止 Stop 后仍触发回调
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	w.cancel()
	w.running = false
	return w.watcher.Close()
}

func (w *Watcher) run() {
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.notify(nil, fmt.Errorf("xsampconf: watch error: %w", err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}

	// Write: 直接修改
	// Create: 新建文件（部分编辑器）
	// Rename: 原子写入模式（vim/emacs 写临时文件后 rename）
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	// 防抖处理：重置计时器
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}
		w.reload()
	})
}

// reload 重新构建采样器并换入，失败时保留旧采样器
func (w *Watcher) reload() {
	sampler, err := Load(w.path)
	if err != nil {
		w.notify(nil, err)
		return
	}
	if err := w.dynamic.Swap(sampler); err != nil {
		w.notify(nil, err)
		return
	}
	w.notify(sampler, nil)
}

func (w *Watcher) notify(sampler xsampling.Sampler, err error) {
	if w.callback != nil {
		w.callback(sampler, err)
	}
}
