package i18n

import "strings"

// Supported UI languages. The client base is Belgian, so the same set the
// Client.Language field uses: English, Dutch, French.
var supported = []string{"en", "nl", "fr"}

const fallback = "en"

var translations = map[string]map[string]string{
	"en": {
		"app.title":          "TF Project",
		"nav.dashboard":      "Dashboard",
		"nav.clients":        "Clients",
		"nav.tasks":          "Tasks",
		"nav.signout":        "Sign out",
		"required":           "Required",
		"dashboard.active":   "Active Clients",
		"dashboard.total":    "Total Tasks",
		"dashboard.pending":  "Pending Tasks",
		"dashboard.done":     "Completed Tasks",
		"clients.add":        "Add Client",
		"clients.none":       "No clients yet. Add your first client to get started.",
		"clients.nomatch":    "No clients found matching your search.",
		"tasks.add":          "Add Task",
		"tasks.none":         "No tasks yet. Add your first task to get started.",
		"tasks.nomatch":      "No tasks found matching your filters.",
		"tasks.recent.none":  "No tasks yet",
		"form.save":          "Save",
		"flash.saved":        "Saved",
		"form.cancel":        "Cancel",
		"auth.login":         "Log in",
		"auth.signup":        "Sign up",
	},
	"nl": {
		"app.title":          "TF Project",
		"nav.dashboard":      "Dashboard",
		"nav.clients":        "Klanten",
		"nav.tasks":          "Taken",
		"nav.signout":        "Afmelden",
		"required":           "Verplicht",
		"dashboard.active":   "Actieve klanten",
		"dashboard.total":    "Taken totaal",
		"dashboard.pending":  "Openstaande taken",
		"dashboard.done":     "Afgeronde taken",
		"clients.add":        "Klant toevoegen",
		"clients.none":       "Nog geen klanten. Voeg uw eerste klant toe.",
		"clients.nomatch":    "Geen klanten gevonden voor deze zoekopdracht.",
		"tasks.add":          "Taak toevoegen",
		"tasks.none":         "Nog geen taken. Voeg uw eerste taak toe.",
		"tasks.nomatch":      "Geen taken gevonden voor deze filters.",
		"tasks.recent.none":  "Nog geen taken",
		"form.save":          "Opslaan",
		"flash.saved":        "Opgeslagen",
		"form.cancel":        "Annuleren",
		"auth.login":         "Aanmelden",
		"auth.signup":        "Registreren",
	},
	"fr": {
		"app.title":          "TF Project",
		"nav.dashboard":      "Tableau de bord",
		"nav.clients":        "Clients",
		"nav.tasks":          "Tâches",
		"nav.signout":        "Déconnexion",
		"required":           "Requis",
		"dashboard.active":   "Clients actifs",
		"dashboard.total":    "Tâches au total",
		"dashboard.pending":  "Tâches en attente",
		"dashboard.done":     "Tâches terminées",
		"clients.add":        "Ajouter un client",
		"clients.none":       "Aucun client. Ajoutez votre premier client.",
		"clients.nomatch":    "Aucun client ne correspond à la recherche.",
		"tasks.add":          "Ajouter une tâche",
		"tasks.none":         "Aucune tâche. Ajoutez votre première tâche.",
		"tasks.nomatch":      "Aucune tâche ne correspond aux filtres.",
		"tasks.recent.none":  "Aucune tâche",
		"form.save":          "Enregistrer",
		"flash.saved":        "Enregistré",
		"form.cancel":        "Annuler",
		"auth.login":         "Connexion",
		"auth.signup":        "Inscription",
	},
}

// T translates code for lang, falling back to English and then to the code
// itself so templates never render an empty string.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[fallback][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		for _, s := range supported {
			if tag == s || strings.HasPrefix(tag, s+"-") {
				return s
			}
		}
	}
	return fallback
}

// Supported reports whether lang is a UI language this app renders.
func Supported(lang string) bool {
	for _, s := range supported {
		if lang == s {
			return true
		}
	}
	return false
}
