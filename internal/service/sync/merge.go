package sync

import (
	"sort"
	"time"
)

// Decision исход слияния одной записи
type Decision string

const (
	// DecisionLocalPending локальная запись не отправлена и побеждает, заполняется только отсутствующий remoteKey
	DecisionLocalPending Decision = "local_pending"
	// DecisionRemoteNewer удаленная запись новее и заменяет локальную
	DecisionRemoteNewer Decision = "remote_newer"
	// DecisionNoop записи совпадают или локальная не старше
	DecisionNoop Decision = "noop"
	// DecisionRemoteOnly запись есть только удаленно и добавляется локально
	DecisionRemoteOnly Decision = "remote_only"
	// DecisionLocalOnly запись есть только локально и сохраняется
	DecisionLocalOnly Decision = "local_only"
)

// Mergeable запись, участвующая в сверке
type Mergeable[T any] interface {
	GetID() string
	GetRemoteKey() *string
	IsPendingSync() bool
	LastModified() time.Time
	WithRemoteKey(key string) T
}

// MergeItem решение по одной записи
// Result итоговое состояние; Write означает, что его нужно сохранить локально
type MergeItem[T any] struct {
	ID       string
	Decision Decision
	Local    T
	Remote   T
	Result   T
	Write    bool
}

// MergeResult решения по всем записям, упорядоченные по id
type MergeResult[T any] struct {
	Items []MergeItem[T]
}

// Count количество решений данного вида
func (r MergeResult[T]) Count(d Decision) int {
	n := 0
	for _, item := range r.Items {
		if item.Decision == d {
			n++
		}
	}
	return n
}

// Writes решения, требующие записи в локальный кэш
func (r MergeResult[T]) Writes() []MergeItem[T] {
	writes := make([]MergeItem[T], 0)
	for _, item := range r.Items {
		if item.Write {
			writes = append(writes, item)
		}
	}
	return writes
}

// MergeRecords сливает локальную и удаленную коллекции по бизнес-идентификатору
// Чистая функция: повторное применение к своему результату дает только Noop/LocalOnly
func MergeRecords[T Mergeable[T]](local, remote []T) MergeResult[T] {
	localByID := make(map[string]T, len(local))
	for _, l := range local {
		localByID[l.GetID()] = l
	}

	// при дубликатах в удаленной коллекции берем самую свежую версию
	remoteByID := make(map[string]T, len(remote))
	for _, r := range remote {
		if prev, ok := remoteByID[r.GetID()]; ok && !r.LastModified().After(prev.LastModified()) {
			continue
		}
		remoteByID[r.GetID()] = r
	}

	ids := make([]string, 0, len(localByID)+len(remoteByID))
	for id := range localByID {
		ids = append(ids, id)
	}
	for id := range remoteByID {
		if _, ok := localByID[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	result := MergeResult[T]{Items: make([]MergeItem[T], 0, len(ids))}
	for _, id := range ids {
		l, hasLocal := localByID[id]
		r, hasRemote := remoteByID[id]
		result.Items = append(result.Items, mergeOne(id, l, hasLocal, r, hasRemote))
	}
	return result
}

func mergeOne[T Mergeable[T]](id string, l T, hasLocal bool, r T, hasRemote bool) MergeItem[T] {
	item := MergeItem[T]{ID: id, Local: l, Remote: r}

	switch {
	case !hasRemote:
		item.Decision = DecisionLocalOnly
		item.Result = l

	case !hasLocal:
		item.Decision = DecisionRemoteOnly
		item.Result = r
		item.Write = true

	case l.IsPendingSync():
		item.Decision = DecisionLocalPending
		item.Result = l
		if l.GetRemoteKey() == nil && r.GetRemoteKey() != nil {
			item.Result = l.WithRemoteKey(*r.GetRemoteKey())
			item.Write = true
		}

	case r.LastModified().After(l.LastModified()):
		item.Decision = DecisionRemoteNewer
		item.Result = r
		item.Write = true

	default:
		item.Decision = DecisionNoop
		item.Result = l
		if l.GetRemoteKey() == nil && r.GetRemoteKey() != nil {
			item.Result = l.WithRemoteKey(*r.GetRemoteKey())
			item.Write = true
		}
	}

	return item
}
