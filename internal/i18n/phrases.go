package i18n

// Phrases maps a language code to its slug -> phrase table.
type Phrases map[string]map[string]string

// MergePhrases returns a copy of base where, for every language already in
// base, the phrases from extra override the base ones. Languages that only
// exist in extra are ignored.
func MergePhrases(base, extra Phrases) Phrases {
	merged := make(Phrases, len(base))
	for lang, phrases := range base {
		table := make(map[string]string, len(phrases))
		for k, v := range phrases {
			table[k] = v
		}
		merged[lang] = table
	}

	for lang, phrases := range extra {
		table, ok := merged[lang]
		if !ok {
			continue
		}
		for k, v := range phrases {
			table[k] = v
		}
	}
	return merged
}

// withDefaults fills the caller's languages with DefaultPhrases while keeping
// the caller's own phrases on top.
func withDefaults(custom Phrases) Phrases {
	if len(custom) == 0 {
		return MergePhrases(DefaultPhrases, nil)
	}
	return MergePhrases(MergePhrases(custom, DefaultPhrases), custom)
}

// DefaultPhrases covers every built-in error code and the stock delete action.
var DefaultPhrases = Phrases{
	"en": {
		"delete":                     "Delete",
		"delete_confirmation_text":   "Are you sure you want to delete those records?\nThis action cannot be undone.",
		"deleted_successfully":       "The entries were successfully deleted.",
		"pk_not_found":               "The \"{pk_name}\" field was not found in the submitted data.",
		"record_not_found":           "No record found for {pk_name}={pk}.",
		"related_not_found":          "Related record {key} was not found for \"{field}\".",
		"field_not_found_in_schema":  "Field \"{field}\" is not part of the schema.",
		"field_required":             "Field is required",
		"validation_error":           "Validation error",
		"invalid_type":               "Expected a value of type {type}.",
		"invalid_choice":             "\"{value}\" is not a valid choice.",
		"invalid_datetime":           "Expected a datetime in ISO 8601 format.",
		"min_length":                 "Ensure this value has at least {limit} characters.",
		"max_length":                 "Ensure this value has at most {limit} characters.",
		"min_value":                  "Ensure this value is greater than or equal to {limit}.",
		"max_value":                  "Ensure this value is less than or equal to {limit}.",
		"db_error_create":            "Error creating a record in the database.",
		"db_error_update":            "Error updating the record in the database.",
		"db_error_retrieve":          "Error retrieving the record from the database.",
		"db_error_list":              "Error fetching records from the database.",
		"db_error_delete":            "Error deleting records from the database.",
		"connection_refused_error":   "Database connection error: {error}",
		"search_help":                "Available search fields: {fields}",
		"filters_exception":          "Filter \"{field}\" is not available.",
		"ordering_field_not_allowed": "Ordering by \"{field}\" is not allowed.",
		"search_not_enabled":         "Search is not enabled for this table.",
		"action_not_found":           "Action \"{action}\" was not found.",
		"empty_selection":            "Select at least one record.",
		"autocomplete_error":         "Autocomplete is not available: {reason}",
		"method_not_allowed":         "This operation is not available for the category.",
		"not_found":                  "Not found.",
		"internal_error":             "An unexpected internal server error occurred.",
		"user_not_found":             "User not found.",
		"not_an_admin":               "The user is not an administrator.",
		"token_error":                "Invalid or expired authentication token.",
		"too_many_requests":          "Too many requests. Please wait.",
	},
	"ru": {
		"delete":                     "Удалить",
		"delete_confirmation_text":   "Вы уверены, что хотите удалить данные записи?\nДанное действие нельзя отменить.",
		"deleted_successfully":       "Записи успешно удалены.",
		"pk_not_found":               "Поле \"{pk_name}\" не найдено среди переданных данных.",
		"record_not_found":           "Запись по ключу {pk_name}={pk} не найдена.",
		"related_not_found":          "Связанная запись {key} для поля \"{field}\" не найдена.",
		"field_not_found_in_schema":  "Поле \"{field}\" отсутствует в схеме.",
		"field_required":             "Обязательное поле",
		"validation_error":           "Ошибка валидации",
		"invalid_type":               "Ожидалось значение типа {type}.",
		"invalid_choice":             "\"{value}\" не является допустимым вариантом.",
		"invalid_datetime":           "Ожидалась дата в формате ISO 8601.",
		"min_length":                 "Значение должно содержать не менее {limit} символов.",
		"max_length":                 "Значение должно содержать не более {limit} символов.",
		"min_value":                  "Значение должно быть не меньше {limit}.",
		"max_value":                  "Значение должно быть не больше {limit}.",
		"db_error_create":            "Ошибка создания записи в базе данных.",
		"db_error_update":            "Ошибка обновления записи в базе данных.",
		"db_error_retrieve":          "Ошибка получения записи из базы данных.",
		"db_error_list":              "Ошибка получения списка записей из базы данных.",
		"db_error_delete":            "Ошибка удаления записей из базы данных.",
		"connection_refused_error":   "Ошибка подключения к базе данных: {error}",
		"search_help":                "Доступные поля для поиска: {fields}",
		"filters_exception":          "Фильтр \"{field}\" недоступен.",
		"ordering_field_not_allowed": "Сортировка по полю \"{field}\" недоступна.",
		"search_not_enabled":         "Поиск для этой таблицы отключен.",
		"action_not_found":           "Действие \"{action}\" не найдено.",
		"empty_selection":            "Выберите хотя бы одну запись.",
		"autocomplete_error":         "Автодополнение недоступно: {reason}",
		"method_not_allowed":         "Операция недоступна для этого раздела.",
		"not_found":                  "Не найдено.",
		"internal_error":             "Внутренняя ошибка сервера.",
		"user_not_found":             "Пользователь не найден.",
		"not_an_admin":               "Пользователь не является администратором.",
		"token_error":                "Недействительный или просроченный токен.",
		"too_many_requests":          "Слишком много запросов. Подождите.",
	},
}
