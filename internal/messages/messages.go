// README: User-facing texts shared by the HTTP API and the CLI.
package messages

import (
	"context"
	"errors"
	"fmt"

	"farecalc/internal/kv"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/modules/profile"
)

const (
	ConfigSaved     = "Configurações salvas com sucesso! 🎉"
	ConfigRequired  = "Complete as configurações primeiro ⚙️"
	AddressNotFound = "Endereço não encontrado 🗺️"
	AddressRequired = "Informe origem e destino"
	RouteNotFound   = "Não foi possível calcular a rota"
	UnknownProfile  = "Perfil não encontrado"
	ReservedProfile = "Nome de perfil reservado"
	Timeout         = "O serviço de mapas demorou demais para responder"
	MapsUnavailable = "Serviço de mapas indisponível"
	Superseded      = "Cálculo substituído por uma nova solicitação"
	Conflict        = "Dados alterados por outra sessão, tente novamente"
	InvalidJSON     = "Requisição inválida"
	Internal        = "Erro interno"
)

// Format suffixes msg with the application name.
func Format(appName, msg string) string {
	if appName == "" {
		return msg
	}
	return fmt.Sprintf("%s - %s", msg, appName)
}

// ForError picks the text shown to the user for an engine error.
func ForError(err error) string {
	switch {
	case errors.Is(err, pricing.ErrInvalidSettings):
		return ConfigRequired
	case errors.Is(err, fare.ErrMissingAddress):
		return AddressRequired
	case errors.Is(err, fare.ErrAddressNotFound):
		return AddressNotFound
	case errors.Is(err, profile.ErrUnknownProfile):
		return UnknownProfile
	case errors.Is(err, profile.ErrReservedProfile):
		return ReservedProfile
	case errors.Is(err, fare.ErrRouteNotFound), errors.Is(err, pricing.ErrComputation):
		return RouteNotFound
	case errors.Is(err, fare.ErrGeocodingTimeout), errors.Is(err, fare.ErrRoutingTimeout):
		return Timeout
	case errors.Is(err, fare.ErrGeocodingFailed):
		return MapsUnavailable
	case errors.Is(err, fare.ErrSuperseded):
		return Superseded
	case errors.Is(err, kv.ErrConflict):
		return Conflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Timeout
	default:
		return Internal
	}
}
