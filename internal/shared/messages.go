package shared

import "golang.org/x/text/language"

// Message keys used across services. Each key has a translation per
// supported language.
const (
	KeyModuleRequired     = "module.required"
	KeyModuleUnknown      = "module.unknown"
	KeyActionForbidden    = "action.forbidden"
	KeyRoleNotVisible     = "role.not_visible"
	KeyRoleNotCreatable   = "role.not_creatable"
	KeyIDRequired         = "id.required"
	KeyVersionRequired    = "version.required"
	KeyVersionConflict    = "version.conflict"
	KeyNotFound           = "entity.not_found"
	KeyDuplicateEmail     = "email.duplicate"
	KeyDuplicateCNPJ      = "cnpj.duplicate"
	KeyDuplicateCode      = "code.duplicate"
	KeyInvalidPayload     = "payload.invalid"
	KeyInvalidCredentials = "credentials.invalid"
	KeyUnauthorized       = "session.unauthorized"
	KeyNotWired           = "mapping.not_wired"
	KeyInternal           = "internal.error"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyModuleRequired:     "module name is required",
		KeyModuleUnknown:      "unknown module",
		KeyActionForbidden:    "you are not allowed to perform this action",
		KeyRoleNotVisible:     "target role is not visible to this module",
		KeyRoleNotCreatable:   "your role cannot create users with this role",
		KeyIDRequired:         "id is required",
		KeyVersionRequired:    "version is required",
		KeyVersionConflict:    "the record was changed by someone else, refresh and try again",
		KeyNotFound:           "record not found",
		KeyDuplicateEmail:     "email already in use",
		KeyDuplicateCNPJ:      "CNPJ already registered",
		KeyDuplicateCode:      "code already in use",
		KeyInvalidPayload:     "invalid request payload",
		KeyInvalidCredentials: "invalid email or password",
		KeyUnauthorized:       "authentication required",
		KeyNotWired:           "operation not available for this module",
		KeyInternal:           "internal error",
	},
	language.BrazilianPortuguese: {
		KeyModuleRequired:     "o nome do módulo é obrigatório",
		KeyModuleUnknown:      "módulo desconhecido",
		KeyActionForbidden:    "você não tem permissão para executar esta ação",
		KeyRoleNotVisible:     "o perfil informado não é visível para este módulo",
		KeyRoleNotCreatable:   "seu perfil não pode criar usuários com este perfil",
		KeyIDRequired:         "o id é obrigatório",
		KeyVersionRequired:    "a versão é obrigatória",
		KeyVersionConflict:    "o registro foi alterado por outra pessoa, atualize e tente novamente",
		KeyNotFound:           "registro não encontrado",
		KeyDuplicateEmail:     "email já está em uso",
		KeyDuplicateCNPJ:      "CNPJ já cadastrado",
		KeyDuplicateCode:      "código já está em uso",
		KeyInvalidPayload:     "corpo da requisição inválido",
		KeyInvalidCredentials: "email ou senha inválidos",
		KeyUnauthorized:       "autenticação necessária",
		KeyNotWired:           "operação indisponível para este módulo",
		KeyInternal:           "erro interno",
	},
}

// Localize resolves the message for key in the best-matching language from
// the Accept-Language header value. Unknown keys fall back to the key itself
// so a missing translation never hides the error.
func Localize(acceptLanguage, key string) string {
	_, idx := language.MatchStrings(languageMatcher, acceptLanguage)
	if msg, ok := messages[supportedLanguages[idx]][key]; ok {
		return msg
	}
	if msg, ok := messages[language.English][key]; ok {
		return msg
	}
	return key
}
