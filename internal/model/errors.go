package model

import "errors"

var (
	// ErrInvalidInput indique un champ requis manquant ou invalide dans la requête
	ErrInvalidInput = errors.New("requête d'estimation invalide")

	// ErrProvider indique un échec du fournisseur de complétion (réseau, API)
	ErrProvider = errors.New("échec du fournisseur de complétion")

	// ErrProviderTimeout indique que le fournisseur a dépassé le budget de temps
	ErrProviderTimeout = errors.New("timeout du fournisseur de complétion")

	// ErrProviderUnauthorized indique une clé API invalide ou expirée
	ErrProviderUnauthorized = errors.New("clé API du fournisseur invalide ou expirée")

	// ErrRateLimited indique que l'API distante a retourné 429
	ErrRateLimited = errors.New("rate limit dépassé sur l'API distante")

	// ErrStore indique que le store de feedback est illisible ou inaccessible en écriture
	ErrStore = errors.New("store de feedback indisponible")

	// ErrSourceNotConfigured indique une source de vélocité ou d'export sans credentials
	ErrSourceNotConfigured = errors.New("source externe non configurée")
)
