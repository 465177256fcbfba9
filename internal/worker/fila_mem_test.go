package worker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/redis/go-redis/v9"
)

// filaMem keeps lists and sorted sets in memory behind the Fila interface.
type filaMem struct {
	mu       sync.Mutex
	listas   map[string][]string
	ordenado map[string]map[string]float64
}

var _ Fila = (*filaMem)(nil)

func novaFilaMem() *filaMem {
	return &filaMem{listas: map[string][]string{}, ordenado: map[string]map[string]float64{}}
}

func texto(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func (f *filaMem) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.listas[key] = append([]string{texto(v)}, f.listas[key]...)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.listas[key])))
	return cmd
}

func (f *filaMem) BRPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringSliceCmd(ctx)
	for _, k := range keys {
		l := f.listas[k]
		if len(l) == 0 {
			continue
		}
		v := l[len(l)-1]
		f.listas[k] = l[:len(l)-1]
		cmd.SetVal([]string{k, v})
		return cmd
	}
	cmd.SetErr(redis.Nil)
	return cmd
}

func (f *filaMem) LLen(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.listas[key])))
	return cmd
}

func (f *filaMem) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ordenado[key] == nil {
		f.ordenado[key] = map[string]float64{}
	}
	for _, m := range members {
		f.ordenado[key][texto(m.Member)] = m.Score
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(members)))
	return cmd
}

func (f *filaMem) ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	limite, _ := strconv.ParseFloat(opt.Max, 64)
	var out []string
	for m, s := range f.ordenado[key] {
		if s <= limite {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.ordenado[key][out[i]] < f.ordenado[key][out[j]] })
	if opt.Count > 0 && int64(len(out)) > opt.Count {
		out = out[:opt.Count]
	}
	cmd := redis.NewStringSliceCmd(ctx)
	cmd.SetVal(out)
	return cmd
}

func (f *filaMem) ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range members {
		if _, ok := f.ordenado[key][texto(m)]; ok {
			delete(f.ordenado[key], texto(m))
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

func (f *filaMem) lista(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listas[key]...)
}

func (f *filaMem) agendados() map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]float64{}
	for k, v := range f.ordenado[QueueAgendados] {
		out[k] = v
	}
	return out
}

// notasFake fails the first `falhas` CreateBatch calls.
type notasFake struct {
	mu     sync.Mutex
	falhas int
	salvas []model.NotaPrazo
	calls  int
}

var _ repository.NotaPrazoRepository = (*notasFake)(nil)

func (n *notasFake) CreateBatch(_ context.Context, notas []model.NotaPrazo) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.falhas > 0 {
		n.falhas--
		return fmt.Errorf("connection refused")
	}
	n.salvas = append(n.salvas, notas...)
	return nil
}

func (n *notasFake) ListByFechamento(context.Context, int64) ([]model.NotaPrazo, error) {
	return nil, nil
}

// linhasFake reports every line as present unless listed in desfeitas.
type linhasFake struct {
	desfeitas map[[2]int64]bool
	err       error
	calls     int
}

var _ Linhas = (*linhasFake)(nil)

func (l *linhasFake) FindLinhaID(_ context.Context, fechamentoID, frentistaID int64) (int64, bool, error) {
	l.calls++
	if l.err != nil {
		return 0, false, l.err
	}
	if l.desfeitas[[2]int64{fechamentoID, frentistaID}] {
		return 0, false, nil
	}
	return 1, true, nil
}
