package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"postocaixa/internal/apierror"
	"postocaixa/internal/middleware"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller must return
// without writing another one.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			for _, fe := range ves {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// identidadeDe turns the JWT claims into the caller identity, or nil for an
// anonymous shared-device request.
func identidadeDe(c *gin.Context) *service.Identidade {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return nil
	}
	authID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil
	}
	return &service.Identidade{
		AuthID:   authID,
		Email:    claims.Email,
		Nome:     claims.Nome,
		Cpf:      claims.Cpf,
		Telefone: claims.Telefone,
		PostoID:  claims.PostoID,
	}
}

// postoDe is the selected station, else the one stored in the caller's token.
func postoDe(c *gin.Context) (int64, bool) {
	if id, ok := middleware.GetPostoID(c); ok {
		return id, true
	}
	if claims := middleware.GetClaims(c); claims != nil && claims.PostoID != nil && *claims.PostoID > 0 {
		return *claims.PostoID, true
	}
	return 0, false
}

func paramID(c *gin.Context, nome string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(nome), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return 0, false
	}
	return id, true
}

// statusDe maps service errors to HTTP statuses. Anything unknown is a 500.
func statusDe(err error) int {
	switch {
	case errors.Is(err, service.ErrNaoAutenticado):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEncerranteZerado),
		errors.Is(err, service.ErrTotalZerado),
		errors.Is(err, service.ErrClienteBloqueado),
		errors.Is(err, service.ErrClienteInexistente),
		errors.Is(err, service.ErrValorNotaInvalido),
		errors.Is(err, service.ErrDataInvalida),
		errors.Is(err, service.ErrFrentistaNaoIdentificado):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrFrentistaNaoEncontrado),
		errors.Is(err, service.ErrTurnoNaoEncontrado),
		errors.Is(err, service.ErrProdutoNaoEncontrado),
		errors.Is(err, service.ErrFechamentoInexistente),
		errors.Is(err, service.ErrNadaParaDesfazer):
		return http.StatusNotFound
	case errors.Is(err, service.ErrFechamentoDuplicado),
		errors.Is(err, service.ErrCaixaJaAberto),
		errors.Is(err, service.ErrEstoqueInsuficiente):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// responderFalha writes the {success:false, message} envelope used by the
// closing endpoints. Remote failures keep their message so the attendant
// can decide to retry.
func responderFalha(c *gin.Context, err error) {
	status := statusDe(err)
	if status == http.StatusInternalServerError && !errors.Is(err, service.ErrFalhaEnvio) {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		c.JSON(status, apierror.NewFalha(service.ErrFalhaEnvio.Error()))
		return
	}
	c.JSON(status, apierror.NewFalha(err.Error()))
}

// responderErro is the {detail} counterpart for the other endpoints.
func responderErro(c *gin.Context, err error, msg500 string) {
	status := statusDe(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(msg500)
		c.JSON(status, apierror.New(msg500))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
