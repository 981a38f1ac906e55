package sync

// Trigger неблокирующий сигнал "есть изменения для отправки"
// Несколько сигналов подряд схлопываются в один цикл синхронизации
type Trigger struct {
	ch chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Kick запрашивает внеочередной цикл, никогда не блокирует вызывающего
func (t *Trigger) Kick() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// C канал, из которого читает цикл синхронизации
func (t *Trigger) C() <-chan struct{} {
	return t.ch
}
