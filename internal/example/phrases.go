package example

import "github.com/Annany2002/nebula-admin/internal/i18n"

const (
	ruPaymentCreateResult = `<h3>Платеж успешно создан!</h3>
Сумма: {amount}<br>
<br>
Данные платежа:<br>
gateway_id={gateway_id}<br>
redirect_url: <a href="{redirect_url}" target="_blank">{redirect_url}</a>`

	enPaymentCreateResult = `<h3>The payment was created successfully!</h3>
Amount: {amount}<br>
<br>
Payment details:<br>
gateway_id={gateway_id}<br>
redirect_url: <a href="{redirect_url}" target="_blank">{redirect_url}</a>`

	loginGreetings = `<div class="text-h6 mb-1">Demo mode</div>
<div class="text-caption">Sign in with the seeded admin account.</div>`
)

// Phrases are the demo panel's strings, laid over the built-in ones.
var Phrases = i18n.Phrases{
	"ru": {
		"admin_title":                "Admin Panel Демо",
		"admin_description":          "Демонстрационная панель администратора",
		"login_greetings_message":    loginGreetings,
		"created_at":                 "Время создания",
		"graphs_example":             "Пример графиков",
		"amount":                     "Сумма",
		"registry_checked":           "Реестр проверен",
		"registry_info_checked":      "Информация по реестру провайдера",
		"payments":                   "Платежи",
		"users":                      "Пользователи",
		"merchants":                  "Мерчанты",
		"terminals":                  "Терминалы",
		"currencies":                 "Валюты",
		"statistics":                 "Статистика",
		"payments_search_fields":     "Доступные поля для поиска: id",
		"create_payment":             "Создать платеж",
		"create_payment_description": "Создать платеж и отправить его на обработку в платежную систему.",
		"payment_create_result":      ruPaymentCreateResult,
		"description":                "Описание",
		"status":                     "Статус",
		"endpoint":                   "Эндпоинт",
		"whitelist_ips":              "Белый список IP",
		"action_with_exception":      "Действие с ошибкой",
		"is_throw_error":             "Выбросить ошибку?",
		"throw_error":                "Пример ошибки валидации поля.",
		"exception_example":          "Пример ошибки исключения.",
	},
	"en": {
		"admin_title":                "Admin Panel Demo",
		"admin_description":          "Demo administration panel",
		"login_greetings_message":    loginGreetings,
		"created_at":                 "Created time",
		"graphs_example":             "Graphs example",
		"amount":                     "Amount",
		"registry_checked":           "Registry checked",
		"registry_info_checked":      "Registry info checked",
		"payments":                   "Payments",
		"users":                      "Users",
		"merchants":                  "Merchants",
		"terminals":                  "Terminals",
		"currencies":                 "Currencies",
		"statistics":                 "Statistics",
		"payments_search_fields":     "Search fields: id",
		"create_payment":             "Create payment",
		"create_payment_description": "Create a payment and send it to the payment system for processing.",
		"payment_create_result":      enPaymentCreateResult,
		"description":                "Description",
		"status":                     "Status",
		"endpoint":                   "Endpoint",
		"whitelist_ips":              "Whitelist IPs",
		"action_with_exception":      "Action with exception",
		"is_throw_error":             "Throw an error?",
		"throw_error":                "Field validation error example.",
		"exception_example":          "Exception example.",
	},
}
