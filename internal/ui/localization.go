package ui

import (
	"strings"

	"fyne.io/fyne/v2/lang"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle           = "app_title"
	KeyDropPlaceholder    = "drop_placeholder"
	KeyDropHint           = "drop_hint"
	KeySend               = "send"
	KeyDownload           = "download"
	KeyExample            = "example"
	KeyProcessing         = "processing"
	KeyResultReady        = "result_ready"
	KeyOpen               = "open"
	KeyReveal             = "reveal"
	KeySettings           = "settings"
	KeyFile               = "file"
	KeyLanguage           = "language"
	KeyBackendURL         = "backend_url"
	KeyBackendURLHint     = "backend_url_hint"
	KeyRequestTimeout     = "request_timeout"
	KeyDownloadDirectory  = "download_directory"
	KeyAutoReveal         = "auto_reveal"
	KeyConnectionSettings = "connection_settings"
	KeySaveSettings       = "save_settings"
	KeyInterfaceSettings  = "interface_settings"
	KeySave               = "save"
	KeyCancel             = "cancel"
	KeyBrowse             = "browse"
	KeySettingsSaved      = "settings_saved"
	KeyError              = "error"
	KeyFileTooLarge       = "file_too_large"
	KeyNoSelection        = "no_selection"
	KeyUploadFailed       = "upload_failed"
	KeyExampleFailed      = "example_failed"
	KeySaveFailed         = "save_failed"
	KeySaved              = "saved"
	KeyServerStatus       = "server_status"
	KeyServiceUnavailable = "service_unavailable"
	KeyErrorOpeningFile   = "error_opening_file"
	KeyCannotReadFile     = "cannot_read_file"
	KeyNotZipHint         = "not_zip_hint"
	KeyRequestCompleted   = "request_completed"
	KeyRequestFailed      = "request_failed"
	KeyContents           = "contents"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:           "Zip Uploader",
		KeyDropPlaceholder:    "zip",
		KeyDropHint:           "Click to choose or drop a .zip file here",
		KeySend:               "Send",
		KeyDownload:           "Download",
		KeyExample:            "Example",
		KeyProcessing:         "Processing...",
		KeyResultReady:        "Result ready",
		KeyOpen:               "Open",
		KeyReveal:             "Reveal",
		KeySettings:           "Settings",
		KeyFile:               "File",
		KeyLanguage:           "Language",
		KeyBackendURL:         "Backend URL",
		KeyBackendURLHint:     "Leave empty to use the deployment default. Applies after restart.",
		KeyRequestTimeout:     "Request timeout, seconds",
		KeyDownloadDirectory:  "Save results to",
		KeyAutoReveal:         "Reveal saved file in file manager",
		KeyConnectionSettings: "Connection",
		KeySaveSettings:       "Saving",
		KeyInterfaceSettings:  "Interface",
		KeySave:               "Save",
		KeyCancel:             "Cancel",
		KeyBrowse:             "Browse",
		KeySettingsSaved:      "Settings saved successfully!",
		KeyError:              "Error",
		KeyFileTooLarge:       "The file is too large. Maximum size is %s.",
		KeyNoSelection:        "Choose a .zip file first.",
		KeyUploadFailed:       "Failed to upload the file",
		KeyExampleFailed:      "Failed to get the example",
		KeySaveFailed:         "Failed to save the result",
		KeySaved:              "Saved",
		KeyServerStatus:       "The server responded with status %d",
		KeyServiceUnavailable: "The processing service is unavailable, try again later",
		KeyErrorOpeningFile:   "Error opening file",
		KeyCannotReadFile:     "Cannot read the selected file",
		KeyNotZipHint:         "This file is not a .zip archive, the server may reject it",
		KeyRequestCompleted:   "Last request completed in %s",
		KeyRequestFailed:      "Last request failed after %s",
		KeyContents:           "Contents",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:           "Загрузчик ZIP",
		KeyDropPlaceholder:    "zip",
		KeyDropHint:           "Нажмите, чтобы выбрать, или перетащите сюда .zip файл",
		KeySend:               "Отправить",
		KeyDownload:           "Скачать",
		KeyExample:            "Пример",
		KeyProcessing:         "Обработка...",
		KeyResultReady:        "Результат готов",
		KeyOpen:               "Открыть",
		KeyReveal:             "Показать",
		KeySettings:           "Настройки",
		KeyFile:               "Файл",
		KeyLanguage:           "Язык",
		KeyBackendURL:         "Адрес сервера",
		KeyBackendURLHint:     "Оставьте пустым для значения по умолчанию. Применяется после перезапуска.",
		KeyRequestTimeout:     "Таймаут запроса, секунд",
		KeyDownloadDirectory:  "Сохранять результаты в",
		KeyAutoReveal:         "Показывать сохранённый файл в файловом менеджере",
		KeyConnectionSettings: "Подключение",
		KeySaveSettings:       "Сохранение",
		KeyInterfaceSettings:  "Интерфейс",
		KeySave:               "Сохранить",
		KeyCancel:             "Отмена",
		KeyBrowse:             "Обзор",
		KeySettingsSaved:      "Настройки успешно сохранены!",
		KeyError:              "Ошибка",
		KeyFileTooLarge:       "Файл слишком большой. Максимальный размер %s.",
		KeyNoSelection:        "Сначала выберите .zip файл.",
		KeyUploadFailed:       "Ошибка загрузки файла",
		KeyExampleFailed:      "Ошибка получения примера",
		KeySaveFailed:         "Не удалось сохранить результат",
		KeySaved:              "Сохранено",
		KeyServerStatus:       "Сервер ответил кодом %d",
		KeyServiceUnavailable: "Сервис обработки недоступен, попробуйте позже",
		KeyErrorOpeningFile:   "Ошибка открытия файла",
		KeyCannotReadFile:     "Не удалось прочитать выбранный файл",
		KeyNotZipHint:         "Это не .zip архив, сервер может его отклонить",
		KeyRequestCompleted:   "Последний запрос выполнен за %s",
		KeyRequestFailed:      "Последний запрос завершился ошибкой через %s",
		KeyContents:           "Содержимое",
	}
}

// systemLanguage maps the OS locale onto a supported language
func systemLanguage() string {
	if strings.HasPrefix(strings.ToLower(string(lang.SystemLocale())), "ru") {
		return "ru"
	}
	return "en"
}
