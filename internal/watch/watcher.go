// Package watch 监听内容目录的文件变化，自动触发增量同步。
package watch

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fieldnotes/internal/service"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce 合并编辑器连续写入产生的事件风暴。
const defaultDebounce = 500 * time.Millisecond

// Watcher 监听内容目录并把变动的 Markdown 文件交给 SyncService。
type Watcher struct {
	root     string
	sync     *service.SyncService
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	done    chan struct{}
}

// New creates a watcher over the content root. Call Start to begin watching.
func New(root string, syncSvc *service.SyncService) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	return &Watcher{
		root:     absRoot,
		sync:     syncSvc,
		watcher:  fsw,
		debounce: defaultDebounce,
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start 注册监听目录并启动事件循环。
func (w *Watcher) Start() error {
	// 监听根目录和 _posts 子目录；fsnotify 不支持递归监听
	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	postsDir := filepath.Join(w.root, "_posts")
	if err := w.watcher.Add(postsDir); err != nil {
		// _posts 目录可以不存在，只记录不报错
		log.Printf("content watcher: skip %s: %v", postsDir, err)
	}

	go w.loop()
	return nil
}

// Stop 关闭监听器，停止事件循环。
func (w *Watcher) Stop() {
	close(w.done)
	if err := w.watcher.Close(); err != nil {
		log.Printf("content watcher: close: %v", err)
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !interesting(event) {
				continue
			}
			w.enqueue(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("content watcher: %v", err)
		}
	}
}

// interesting filters to markdown writes, creates, removes and renames.
func interesting(event fsnotify.Event) bool {
	ext := strings.ToLower(filepath.Ext(event.Name))
	if ext != ".md" && ext != ".markdown" {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// enqueue 记录待同步的文件并重置防抖定时器。
func (w *Watcher) enqueue(name string) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[filepath.ToSlash(rel)] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush 冲刷累积的变更。单个文件走增量同步，多个文件直接全量同步。
func (w *Watcher) flush() {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if len(batch) == 1 {
		for rel := range batch {
			if _, err := w.sync.SyncOne(rel); err != nil {
				log.Printf("content watcher: sync %s: %v", rel, err)
			}
		}
		return
	}
	report, err := w.sync.Sync()
	if err != nil {
		log.Printf("content watcher: full sync: %v", err)
		return
	}
	log.Printf("content watcher: synced %d pages, %d posts (%d updated, %d removed)",
		report.Pages, report.Posts, report.Updated, report.Removed)
}
