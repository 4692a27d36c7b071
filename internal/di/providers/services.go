package providers

import (
	"github.com/samber/do/v2"

	"github.com/kouichiii/paper-manager/internal/logger"
	"github.com/kouichiii/paper-manager/internal/service"
	"github.com/kouichiii/paper-manager/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvidePaperService provides the paper service.
func ProvidePaperService(i do.Injector) (*service.PaperService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPaperService(storeHandle.Store, validator, log.Logger), nil
}
