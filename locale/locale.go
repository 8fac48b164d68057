// Package locale maps UI language codes to speech locales and localized
// interface strings. Profiles are static configuration; adding a language
// means adding a table entry, never logic.
package locale

import "sort"

// Keys understood by Text. Error keys line up with the capture error codes
// ("err." + code) so callers can derive them without a mapping table.
const (
	StatusReady        = "status.ready"
	StatusListening    = "status.listening"
	StatusTranscribing = "status.transcribing"
	StatusThinking     = "status.thinking"

	WarnLowConfidence = "warn.low_confidence"
	NoticeCopied      = "notice.copied"
	NoticeBusy        = "notice.busy"

	ErrPermissionDenied = "err.permission_denied"
	ErrDeviceNotFound   = "err.device_not_found"
	ErrCaptureFailed    = "err.capture_failed"
	ErrNoSpeech         = "err.no_speech"
	ErrNetworkFailure   = "err.network_failure"
	ErrRecognizerBusy   = "err.recognizer_busy"
	ErrEmptyCapture     = "err.empty_capture"
	ErrTranscription    = "err.transcription_failed"
	ErrQueryFailed      = "err.query_failed"

	FieldGenericName  = "field.generic_name"
	FieldBrandName    = "field.brand_name"
	FieldManufacturer = "field.manufacturer"
	FieldIndications  = "field.indications"
	FieldDosage       = "field.dosage"
	FieldWarnings     = "field.warnings"
	FieldSideEffects  = "field.side_effects"
	NotAvailable      = "value.not_available"

	ChatWelcome     = "chat.welcome"
	ChatPlaceholder = "chat.placeholder"
)

const fallbackCode = "en"

// Profile describes one supported UI language.
type Profile struct {
	Code         string
	Name         string
	SpeechLocale string
	strings      map[string]string
}

var profiles = map[string]Profile{
	"en": {
		Code:         "en",
		Name:         "English",
		SpeechLocale: "en-US",
		strings: map[string]string{
			StatusReady:        "Ready",
			StatusListening:    "Listening...",
			StatusTranscribing: "Transcribing...",
			StatusThinking:     "Looking up drug information...",

			WarnLowConfidence: "I may have misheard you. Please check the text before sending.",
			NoticeCopied:      "Copied to clipboard",
			NoticeBusy:        "Still looking up your last question. Try again in a moment.",

			ErrPermissionDenied: "Microphone access was denied. Please allow microphone access and try again.",
			ErrDeviceNotFound:   "No microphone was found. Please connect one and try again.",
			ErrCaptureFailed:    "Could not access the microphone. Please try again.",
			ErrNoSpeech:         "No speech detected. Please try again.",
			ErrNetworkFailure:   "Could not reach the server. Please check your connection and try again.",
			ErrRecognizerBusy:   "Speech recognition is busy. Please try again in a moment.",
			ErrEmptyCapture:     "Nothing was recorded. Please try again.",
			ErrTranscription:    "Voice transcription failed. Please try again or type your question.",
			ErrQueryFailed:      "Something went wrong while looking that up. Please try again.",

			FieldGenericName:  "Generic name",
			FieldBrandName:    "Brand name",
			FieldManufacturer: "Manufacturer",
			FieldIndications:  "Indications",
			FieldDosage:       "Dosage",
			FieldWarnings:     "Warnings",
			FieldSideEffects:  "Side effects",
			NotAvailable:      "Not available",

			ChatWelcome:     "Hi! Ask me about a medication, or press Ctrl+R to ask by voice.",
			ChatPlaceholder: "Type a drug name...",
		},
	},
	"es": {
		Code:         "es",
		Name:         "Español",
		SpeechLocale: "es-ES",
		strings: map[string]string{
			StatusReady:        "Listo",
			StatusListening:    "Escuchando...",
			StatusTranscribing: "Transcribiendo...",
			StatusThinking:     "Buscando información del medicamento...",

			WarnLowConfidence: "Puede que te haya entendido mal. Revisa el texto antes de enviarlo.",
			NoticeCopied:      "Copiado al portapapeles",
			NoticeBusy:        "Todavía estoy buscando tu última pregunta. Inténtalo de nuevo en un momento.",

			ErrPermissionDenied: "Se denegó el acceso al micrófono. Permite el acceso e inténtalo de nuevo.",
			ErrDeviceNotFound:   "No se encontró ningún micrófono. Conecta uno e inténtalo de nuevo.",
			ErrCaptureFailed:    "No se pudo acceder al micrófono. Inténtalo de nuevo.",
			ErrNoSpeech:         "No se detectó voz. Inténtalo de nuevo.",
			ErrNetworkFailure:   "No se pudo conectar con el servidor. Comprueba tu conexión e inténtalo de nuevo.",
			ErrRecognizerBusy:   "El reconocimiento de voz está ocupado. Inténtalo de nuevo en un momento.",
			ErrEmptyCapture:     "No se grabó nada. Inténtalo de nuevo.",
			ErrTranscription:    "Falló la transcripción de voz. Inténtalo de nuevo o escribe tu pregunta.",
			ErrQueryFailed:      "Algo salió mal durante la búsqueda. Inténtalo de nuevo.",

			FieldGenericName:  "Nombre genérico",
			FieldBrandName:    "Nombre comercial",
			FieldManufacturer: "Fabricante",
			FieldIndications:  "Indicaciones",
			FieldDosage:       "Dosis",
			FieldWarnings:     "Advertencias",
			FieldSideEffects:  "Efectos secundarios",
			NotAvailable:      "No disponible",

			ChatWelcome:     "¡Hola! Pregúntame por un medicamento, o pulsa Ctrl+R para preguntar por voz.",
			ChatPlaceholder: "Escribe el nombre de un medicamento...",
		},
	},
	"fr": {
		Code:         "fr",
		Name:         "Français",
		SpeechLocale: "fr-FR",
		strings: map[string]string{
			StatusReady:        "Prêt",
			StatusListening:    "Écoute en cours...",
			StatusTranscribing: "Transcription...",
			StatusThinking:     "Recherche d'informations sur le médicament...",

			WarnLowConfidence: "Je vous ai peut-être mal compris. Vérifiez le texte avant d'envoyer.",
			NoticeCopied:      "Copié dans le presse-papiers",
			NoticeBusy:        "Je cherche encore votre dernière question. Réessayez dans un instant.",

			ErrPermissionDenied: "L'accès au microphone a été refusé. Autorisez l'accès et réessayez.",
			ErrDeviceNotFound:   "Aucun microphone trouvé. Branchez-en un et réessayez.",
			ErrCaptureFailed:    "Impossible d'accéder au microphone. Réessayez.",
			ErrNoSpeech:         "Aucune parole détectée. Réessayez.",
			ErrNetworkFailure:   "Impossible de joindre le serveur. Vérifiez votre connexion et réessayez.",
			ErrRecognizerBusy:   "La reconnaissance vocale est occupée. Réessayez dans un instant.",
			ErrEmptyCapture:     "Rien n'a été enregistré. Réessayez.",
			ErrTranscription:    "La transcription vocale a échoué. Réessayez ou tapez votre question.",
			ErrQueryFailed:      "Une erreur est survenue pendant la recherche. Réessayez.",

			FieldGenericName:  "Nom générique",
			FieldBrandName:    "Nom commercial",
			FieldManufacturer: "Fabricant",
			FieldIndications:  "Indications",
			FieldDosage:       "Posologie",
			FieldWarnings:     "Avertissements",
			FieldSideEffects:  "Effets secondaires",
			NotAvailable:      "Non disponible",

			ChatWelcome:     "Bonjour ! Posez-moi une question sur un médicament, ou appuyez sur Ctrl+R pour parler.",
			ChatPlaceholder: "Tapez le nom d'un médicament...",
		},
	},
	// Hindi ships the high-traffic strings; the rest fall back to English.
	"hi": {
		Code:         "hi",
		Name:         "हिन्दी",
		SpeechLocale: "hi-IN",
		strings: map[string]string{
			StatusReady:        "तैयार",
			StatusListening:    "सुन रहा हूँ...",
			StatusTranscribing: "लिख रहा हूँ...",
			StatusThinking:     "दवा की जानकारी खोजी जा रही है...",

			WarnLowConfidence: "हो सकता है मैंने गलत सुना हो। भेजने से पहले टेक्स्ट जाँच लें।",

			ErrNoSpeech:       "कोई आवाज़ नहीं मिली। फिर से कोशिश करें।",
			ErrNetworkFailure: "सर्वर से संपर्क नहीं हो सका। अपना कनेक्शन जाँचें।",
			ErrEmptyCapture:   "कुछ रिकॉर्ड नहीं हुआ। फिर से कोशिश करें।",

			NotAvailable: "उपलब्ध नहीं",
		},
	},
}

// SpeechLocale returns the speech-recognition locale tag for a UI language
// code, falling back to the English profile for unmapped codes.
func SpeechLocale(code string) string {
	if p, ok := profiles[code]; ok {
		return p.SpeechLocale
	}
	return profiles[fallbackCode].SpeechLocale
}

// Text returns the localized string for key in the given language. Unmapped
// codes and untranslated keys fall back to English; a key missing from the
// English table is returned as-is so the gap is visible.
func Text(code, key string) string {
	if p, ok := profiles[code]; ok {
		if s, ok := p.strings[key]; ok {
			return s
		}
	}
	if s, ok := profiles[fallbackCode].strings[key]; ok {
		return s
	}
	return key
}

// Supported returns the UI language codes with a profile, sorted.
func Supported() []string {
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DisplayName returns the profile's own name for itself.
func DisplayName(code string) string {
	if p, ok := profiles[code]; ok {
		return p.Name
	}
	return profiles[fallbackCode].Name
}
