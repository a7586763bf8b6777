package slideshow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"woreda_portal/internal/domain/models"
)

var (
	ErrViewerOpen   = errors.New("viewer already open")
	ErrAlbumLoading = errors.New("album fetch already in flight")
)

// Key клавиши, которыми управляется просмотрщик
type Key int

const (
	KeyArrowLeft Key = iota
	KeyArrowRight
	KeyEscape
)

// ItemSource отдаёт упорядоченный список элементов альбома
type ItemSource interface {
	ListAlbumItems(ctx context.Context, category string, regionID *int64) ([]models.GalleryItem, error)
}

// ScrollLock подавляет прокрутку подложки на время просмотра.
// Release обязан вызываться на каждом выходе из открытого состояния,
// включая аварийный демонтаж.
type ScrollLock interface {
	Acquire()
	Release()
}

// InputBinder подписывает контроллер на ввод (клавиатура, указатель)
// и возвращает функцию отписки
type InputBinder interface {
	Bind(h InputHandler) (release func())
}

type InputHandler interface {
	HandleKey(k Key)
	HandlePointer(insideFrame bool)
}

// NopScrollLock заглушка для окружений без прокручиваемой подложки
type NopScrollLock struct{}

func (NopScrollLock) Acquire() {}
func (NopScrollLock) Release() {}

// BinderFunc адаптер функции к InputBinder
type BinderFunc func(h InputHandler) func()

func (f BinderFunc) Bind(h InputHandler) func() { return f(h) }

// NopBinder для вызывающих, которые дёргают контроллер напрямую
var NopBinder = BinderFunc(func(InputHandler) func() { return func() {} })

// Controller конечный автомат просмотра альбома: Closed либо
// Open(items, index). Открытый альбом без элементов ничего не
// показывает, но остаётся отдельным состоянием для предусловий.
// Список items не меняется, пока просмотр открыт.
type Controller struct {
	log    *slog.Logger
	source ItemSource
	lock   ScrollLock
	binder InputBinder

	mu      sync.Mutex
	open    bool
	items   []models.GalleryItem
	index   int
	loading map[string]bool
	unbind  func()
}

func NewController(log *slog.Logger, source ItemSource, lock ScrollLock, binder InputBinder) *Controller {
	return &Controller{
		log:     log,
		source:  source,
		lock:    lock,
		binder:  binder,
		loading: make(map[string]bool),
	}
}

// OpenAlbum переводит Closed -> Open. Пока запрос элементов в полёте,
// категория помечена флагом загрузки и повторный вызов по той же
// категории отклоняется. Неудачный запрос оставляет контроллер
// закрытым со снятым флагом.
func (c *Controller) OpenAlbum(ctx context.Context, category string, regionID *int64) error {
	const op = "slideshow.Controller.OpenAlbum"

	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return ErrViewerOpen
	}
	if c.loading[category] {
		c.mu.Unlock()
		return ErrAlbumLoading
	}
	c.loading[category] = true
	c.mu.Unlock()

	items, err := c.source.ListAlbumItems(ctx, category, regionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading, category)

	if err != nil {
		c.log.Error("album fetch failed",
			slog.String("op", op),
			slog.String("category", category),
			slog.Any("err", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	// Пока выборка была в полёте, мог открыться другой альбом;
	// его блокировку и подписку не трогаем
	if c.open {
		return ErrViewerOpen
	}

	c.items = items
	c.index = 0
	c.open = true

	c.lock.Acquire()
	c.unbind = c.binder.Bind(c)

	return nil
}

// Next сдвигает текущий индекс вперёд по кругу
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || len(c.items) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.items)
}

// Prev сдвигает текущий индекс назад по кругу
func (c *Controller) Prev() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || len(c.items) == 0 {
		return
	}
	c.index = (c.index - 1 + len(c.items)) % len(c.items)
}

// Close переводит Open -> Closed и освобождает подписку на ввод и
// блокировку прокрутки. Идемпотентен: повторный вызов и вызов на
// закрытом контроллере безопасны, поэтому годится для демонтажа.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	if !c.open {
		return
	}

	c.open = false
	c.items = nil
	c.index = 0

	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	c.lock.Release()
}

// Current возвращает показываемый элемент; ok == false, когда
// просмотр закрыт или альбом пуст
func (c *Controller) Current() (models.GalleryItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || len(c.items) == 0 {
		return models.GalleryItem{}, false
	}
	return c.items[c.index], true
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// IsLoading сообщает, в полёте ли запрос по категории; вызывающий
// по этому флагу сам решает, блокировать ли повторный триггер
func (c *Controller) IsLoading(category string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading[category]
}

// Index текущая позиция; -1 когда просмотр закрыт или альбом пуст
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || len(c.items) == 0 {
		return -1
	}
	return c.index
}

func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// HandleKey привязки клавиш: стрелки листают, Escape закрывает
func (c *Controller) HandleKey(k Key) {
	switch k {
	case KeyArrowRight:
		c.Next()
	case KeyArrowLeft:
		c.Prev()
	case KeyEscape:
		c.Close()
	}
}

// HandlePointer клик вне кадра закрывает просмотр, внутри — нет
func (c *Controller) HandlePointer(insideFrame bool) {
	if !insideFrame {
		c.Close()
	}
}
