package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── In-memory repositories ───────────────────────────────────────────────────

type memUsuarios struct {
	itens []model.Usuario
	err   error
}

var _ repository.UsuarioRepository = (*memUsuarios)(nil)

func (r *memUsuarios) Create(_ context.Context, u *model.Usuario) error {
	for _, x := range r.itens {
		if strings.EqualFold(x.Email, u.Email) {
			return repository.ErrDuplicado
		}
	}
	u.ID = int64(len(r.itens) + 1)
	r.itens = append(r.itens, *u)
	return nil
}

func (r *memUsuarios) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.itens {
		if strings.EqualFold(r.itens[i].Email, email) {
			u := r.itens[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsuarios) FindByAuthID(_ context.Context, authID uuid.UUID) (*model.Usuario, error) {
	for i := range r.itens {
		if r.itens[i].AuthID == authID {
			u := r.itens[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsuarios) FirstAdmin(_ context.Context) (*model.Usuario, error) {
	for i := range r.itens {
		if r.itens[i].Role == model.RoleAdmin {
			u := r.itens[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUsuarios) First(_ context.Context) (*model.Usuario, error) {
	if len(r.itens) == 0 {
		return nil, nil
	}
	u := r.itens[0]
	return &u, nil
}

type memFrentistas struct {
	mu        sync.Mutex
	itens     map[int64]*model.Frentista
	next      int64
	createErr error
	// concorrente, when set, is stored by Create in place of the new record,
	// which then fails as a duplicate.
	concorrente *model.Frentista
	// espera, when set, blocks FindByUserID until closed or ctx ends.
	espera chan struct{}
}

var _ repository.FrentistaRepository = (*memFrentistas)(nil)

func newMemFrentistas(fs ...model.Frentista) *memFrentistas {
	r := &memFrentistas{itens: map[int64]*model.Frentista{}}
	for i := range fs {
		f := fs[i]
		r.itens[f.ID] = &f
		if f.ID > r.next {
			r.next = f.ID
		}
	}
	return r
}

func (r *memFrentistas) FindByID(_ context.Context, id int64) (*model.Frentista, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.itens[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (r *memFrentistas) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Frentista, error) {
	if r.espera != nil {
		select {
		case <-r.espera:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.itens {
		if f.UserID != nil && *f.UserID == userID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memFrentistas) ListByPosto(_ context.Context, postoID int64) ([]model.Frentista, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Frentista
	for _, f := range r.itens {
		if f.PostoID == postoID && f.Ativo {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r *memFrentistas) Create(_ context.Context, f *model.Frentista) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.concorrente != nil {
		cp := *r.concorrente
		r.itens[cp.ID] = &cp
		return repository.ErrDuplicado
	}
	r.next++
	f.ID = r.next
	cp := *f
	r.itens[f.ID] = &cp
	return nil
}

func (r *memFrentistas) Update(_ context.Context, id int64, campos map[string]any) (*model.Frentista, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.itens[id]
	if !ok {
		return nil, nil
	}
	for k, v := range campos {
		switch k {
		case "nome":
			f.Nome = v.(string)
		case "ativo":
			f.Ativo = v.(bool)
		case "turno_id":
			t := v.(int64)
			f.TurnoID = &t
		case "cpf":
			s := v.(string)
			f.Cpf = &s
		case "telefone":
			s := v.(string)
			f.Telefone = &s
		}
	}
	cp := *f
	return &cp, nil
}

type memTurnos struct {
	itens []model.Turno
	err   error
}

var _ repository.TurnoRepository = (*memTurnos)(nil)

func (r *memTurnos) ListByPosto(_ context.Context, postoID int64) ([]model.Turno, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Turno
	for _, t := range r.itens {
		if t.PostoID == postoID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTurnos) FindByID(_ context.Context, id int64) (*model.Turno, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.itens {
		if r.itens[i].ID == id {
			t := r.itens[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTurnos) Create(_ context.Context, t *model.Turno) error {
	t.ID = int64(len(r.itens) + 1)
	r.itens = append(r.itens, *t)
	return nil
}

func (r *memTurnos) Save(_ context.Context, t *model.Turno) error {
	for i := range r.itens {
		if r.itens[i].ID == t.ID {
			r.itens[i] = *t
			return nil
		}
	}
	return errors.New("turno inexistente")
}

type memClientes struct {
	itens     []model.Cliente
	consultas int
}

var _ repository.ClienteRepository = (*memClientes)(nil)

func (r *memClientes) ListByPosto(_ context.Context, postoID int64) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.itens {
		if c.PostoID != nil && *c.PostoID == postoID && c.Ativo {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memClientes) Search(ctx context.Context, postoID int64, termo string) ([]model.Cliente, error) {
	all, _ := r.ListByPosto(ctx, postoID)
	var out []model.Cliente
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Nome), strings.ToLower(termo)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memClientes) FindByIDs(_ context.Context, ids []int64) ([]model.Cliente, error) {
	r.consultas++
	var out []model.Cliente
	for _, c := range r.itens {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

type memNotas struct {
	itens []model.NotaPrazo
	err   error
}

var _ repository.NotaPrazoRepository = (*memNotas)(nil)

func (r *memNotas) CreateBatch(_ context.Context, notas []model.NotaPrazo) error {
	if r.err != nil {
		return r.err
	}
	for _, n := range notas {
		n.ID = int64(len(r.itens) + 1)
		r.itens = append(r.itens, n)
	}
	return nil
}

func (r *memNotas) ListByFechamento(_ context.Context, id int64) ([]model.NotaPrazo, error) {
	var out []model.NotaPrazo
	for _, n := range r.itens {
		if n.FechamentoID != nil && *n.FechamentoID == id {
			out = append(out, n)
		}
	}
	return out, nil
}

// memFechamentos mirrors the unique keys of the real tables: one envelope per
// (data, turno, posto) and one line per (envelope, frentista).
type memFechamentos struct {
	envelopes map[int64]*model.Fechamento
	linhas    map[int64]*model.FechamentoFrentista
	notas     *memNotas
	nextEnv   int64
	nextLinha int64
	createErr error
}

var _ repository.FechamentoRepository = (*memFechamentos)(nil)

func newMemFechamentos(notas *memNotas) *memFechamentos {
	return &memFechamentos{
		envelopes: map[int64]*model.Fechamento{},
		linhas:    map[int64]*model.FechamentoFrentista{},
		notas:     notas,
	}
}

func (r *memFechamentos) FindByPeriodo(_ context.Context, data time.Time, turnoID, postoID int64) (*model.Fechamento, error) {
	dia := model.Dia(data)
	for _, f := range r.envelopes {
		if f.Data.Equal(dia) && f.TurnoID == turnoID && f.PostoID == postoID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memFechamentos) FindByID(_ context.Context, id int64) (*model.Fechamento, error) {
	f, ok := r.envelopes[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	cp.Linhas = r.linhasDe(id)
	return &cp, nil
}

func (r *memFechamentos) GetOrCreate(ctx context.Context, f *model.Fechamento) (*model.Fechamento, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if existente, _ := r.FindByPeriodo(ctx, f.Data, f.TurnoID, f.PostoID); existente != nil {
		return existente, nil
	}
	r.nextEnv++
	f.ID = r.nextEnv
	f.Data = model.Dia(f.Data)
	cp := *f
	r.envelopes[f.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memFechamentos) RecomputeAndPersist(_ context.Context, id int64, totalVendas decimal.Decimal, obs *string) error {
	f, ok := r.envelopes[id]
	if !ok {
		return errors.New("fechamento inexistente")
	}
	repository.AgregarFechamento(f, r.linhasDe(id), totalVendas, obs)
	return nil
}

func (r *memFechamentos) CreateLinha(_ context.Context, l *model.FechamentoFrentista) error {
	for _, x := range r.linhas {
		if x.FechamentoID == l.FechamentoID && x.FrentistaID == l.FrentistaID {
			return repository.ErrDuplicado
		}
	}
	r.nextLinha++
	l.ID = r.nextLinha
	l.CreatedAt = time.Now()
	cp := *l
	r.linhas[l.ID] = &cp
	return nil
}

func (r *memFechamentos) UpdateLinha(_ context.Context, id int64, _ map[string]any) (*model.FechamentoFrentista, error) {
	l, ok := r.linhas[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memFechamentos) FindLinhaID(_ context.Context, fechamentoID, frentistaID int64) (int64, bool, error) {
	for _, l := range r.linhas {
		if l.FechamentoID == fechamentoID && l.FrentistaID == frentistaID {
			return l.ID, true, nil
		}
	}
	return 0, false, nil
}

func (r *memFechamentos) DeleteLinha(_ context.Context, linhaID int64) error {
	l, ok := r.linhas[linhaID]
	if !ok {
		return nil
	}
	if r.notas != nil {
		restantes := r.notas.itens[:0]
		for _, n := range r.notas.itens {
			if n.FechamentoID != nil && *n.FechamentoID == l.FechamentoID && n.FrentistaID == l.FrentistaID {
				continue
			}
			restantes = append(restantes, n)
		}
		r.notas.itens = restantes
	}
	delete(r.linhas, linhaID)
	return nil
}

func (r *memFechamentos) FrentistasQueFecharam(ctx context.Context, data time.Time, turnoID, postoID int64) ([]int64, error) {
	env, _ := r.FindByPeriodo(ctx, data, turnoID, postoID)
	if env == nil {
		return nil, nil
	}
	var ids []int64
	for _, l := range r.linhasDe(env.ID) {
		ids = append(ids, l.FrentistaID)
	}
	return ids, nil
}

func (r *memFechamentos) Historico(_ context.Context, frentistaID, postoID int64, limite int) ([]model.FechamentoFrentista, error) {
	var out []model.FechamentoFrentista
	for _, l := range r.linhas {
		if l.FrentistaID == frentistaID && l.PostoID == postoID {
			cp := *l
			cp.Fechamento = r.envelopes[l.FechamentoID]
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limite {
		out = out[:limite]
	}
	return out, nil
}

func (r *memFechamentos) linhasDe(id int64) []model.FechamentoFrentista {
	var out []model.FechamentoFrentista
	for _, l := range r.linhas {
		if l.FechamentoID == id {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memCaixas struct {
	mu          sync.Mutex
	abertos     map[int64]bool
	abrirErr    error
	consultaErr error
	aberturas   []model.AberturaCaixa
}

var _ repository.CaixaRepository = (*memCaixas)(nil)

func (r *memCaixas) AbertoHoje(_ context.Context, frentistaID int64, _ time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consultaErr != nil {
		return false, r.consultaErr
	}
	return r.abertos[frentistaID], nil
}

func (r *memCaixas) Abrir(_ context.Context, a *model.AberturaCaixa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.abrirErr != nil {
		return r.abrirErr
	}
	if r.abertos == nil {
		r.abertos = map[int64]bool{}
	}
	if r.abertos[a.FrentistaID] {
		return repository.ErrDuplicado
	}
	a.ID = int64(len(r.aberturas) + 1)
	a.Data = model.Dia(a.Data)
	r.abertos[a.FrentistaID] = true
	r.aberturas = append(r.aberturas, *a)
	return nil
}

// ── Collaborators ────────────────────────────────────────────────────────────

type filaFake struct{ lotes [][]model.NotaPrazo }

func (f *filaFake) EnfileirarNotas(_ context.Context, notas []model.NotaPrazo) error {
	f.lotes = append(f.lotes, notas)
	return nil
}

type notificadorFake struct{ eventos []string }

func (n *notificadorFake) Publicar(_ context.Context, _ int64, tipo string) error {
	n.eventos = append(n.eventos, tipo)
	return nil
}

func relogio(hhmm string) func() time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2026-03-10 "+hhmm)
	return func() time.Time { return t }
}

func ptr[T any](v T) *T { return &v }
