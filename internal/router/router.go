package router

import (
	"time"

	"postocaixa/internal/config"
	"postocaixa/internal/handler"
	"postocaixa/internal/infra"
	"postocaixa/internal/middleware"
	"postocaixa/internal/model"
	"postocaixa/internal/realtime"
	"postocaixa/internal/repository"
	"postocaixa/internal/service"
	"postocaixa/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notasCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	contador := middleware.NewRedisContador(rdb)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origens()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(contador, 1000, time.Minute)) // 1000 req/min per IP
	r.Use(middleware.PostoContext())

	// Station-local clock for shift windows and "today"
	loc := cfg.Location()
	agora := func() time.Time { return time.Now().In(loc) }

	// ── Infrastructure ───────────────────────────────────────────────────────
	hub := realtime.NewHub(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	frentistaRepo := repository.NewFrentistaRepository(db)
	turnoRepo := repository.NewTurnoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	fechamentoRepo := repository.NewFechamentoRepository(db)
	notaRepo := repository.NewNotaPrazoRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	turnoSvc := service.NewTurnoService(turnoRepo, hub, agora)
	sessaoSvc := service.NewSessaoService(
		usuarioRepo, frentistaRepo, caixaRepo, turnoRepo, turnoSvc,
		service.SessaoConfig{Timeout: cfg.BootstrapTimeout, DefaultPostoID: cfg.DefaultPostoID},
		agora,
	)
	fechamentoSvc := service.NewFechamentoService(
		usuarioRepo, frentistaRepo, turnoRepo, clienteRepo, fechamentoRepo, notaRepo,
		dispatcher, hub,
		service.FechamentoConfig{AtribuicaoFallback: cfg.AtribuicaoFallback},
		agora,
	)
	cadastroSvc := service.NewCadastroService(frentistaRepo, clienteRepo)
	vendaSvc := service.NewVendaProdutoService(produtoRepo, frentistaRepo, agora)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	sessaoH := handler.NewSessaoHandler(sessaoSvc)
	turnosH := handler.NewTurnosHandler(turnoSvc)
	fechamentosH := handler.NewFechamentosHandler(fechamentoSvc, cfg.PDFStoragePath)
	cadastrosH := handler.NewCadastrosHandler(cadastroSvc)
	produtosH := handler.NewProdutosHandler(vendaSvc)
	mudancasH := handler.NewMudancasHandler(hub, 25*time.Second)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, notasCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/signup", middleware.LoginRateLimiter(contador), authH.Signup)
		auth.POST("/login", middleware.LoginRateLimiter(contador), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Shared-device routes: a token is optional, but an invalid one is rejected
	optMW := middleware.OptionalJWTAuth(cfg.JWTSecret)
	abertas := r.Group("/v1", optMW)
	{
		abertas.POST("/sessao/bootstrap", sessaoH.Bootstrap)

		abertas.GET("/turnos", turnosH.Listar)
		abertas.GET("/turnos/atual", turnosH.Atual)

		abertas.GET("/frentistas", cadastrosH.ListarFrentistas)
		abertas.GET("/frentistas/:id/historico", fechamentosH.Historico)
		abertas.GET("/clientes", cadastrosH.ListarClientes)
		abertas.GET("/produtos", produtosH.Listar)

		abertas.POST("/fechamentos", fechamentosH.Submeter)
		abertas.POST("/fechamentos/desfazer", fechamentosH.Desfazer)
		abertas.POST("/fechamentos/calcular", fechamentosH.Calcular)
		abertas.GET("/fechamentos/fecharam", fechamentosH.Fecharam)

		abertas.GET("/mudancas", mudancasH.Stream)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/caixa/abrir", caixaRoles(), sessaoH.AbrirCaixa)
		v1.POST("/vendas-produto", caixaRoles(), produtosH.RegistrarVenda)
		v1.GET("/vendas-produto/hoje", caixaRoles(), produtosH.VendasDeHoje)
		v1.GET("/fechamentos/:id/pdf", caixaRoles(), fechamentosH.PDF)

		gestao := v1.Group("", middleware.RequireRole(model.RoleAdmin, model.RoleProprietario))
		{
			gestao.PATCH("/frentistas/:id", cadastrosH.AtualizarFrentista)
			gestao.POST("/turnos", turnosH.Criar)
			gestao.PUT("/turnos/:id", turnosH.Atualizar)
		}
	}

	// Swagger UI, outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func caixaRoles() gin.HandlerFunc {
	return middleware.RequireRole(model.RoleFrentista, model.RoleAdmin, model.RoleProprietario)
}
