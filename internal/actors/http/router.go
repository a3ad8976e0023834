package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// route is an endpoint together with the annotations its documentation is generated from.
type route struct {
	method  string
	pattern string
	doc     operationDoc
	handler runtime.HandlerFunc
}

// RouterArgs are the mandatory args to build the HTTP handler.
type RouterArgs struct {
	// Users serves the user endpoints.
	Users *UserService

	// Registry receives the HTTP collectors and is exposed on /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the HTTP handler serving the user API, its documentation, health and metrics.
func NewRouter(args RouterArgs) (http.Handler, error) {
	if args.Users == nil || args.Registry == nil {
		return nil, errors.New("users service and registry are required")
	}
	metrics, err := NewMetrics(args.Registry)
	if err != nil {
		return nil, fmt.Errorf("error registering http metrics: %w", err)
	}

	mux := runtime.NewServeMux()
	apiRoutes := args.Users.routes()
	for _, rt := range apiRoutes {
		if err := mux.HandlePath(rt.method, rt.pattern, metrics.instrument(rt.method, rt.pattern, rt.handler)); err != nil {
			return nil, fmt.Errorf("error registering %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	spec, err := openAPIDocument(apiRoutes)
	if err != nil {
		return nil, err
	}
	metricsHandler := promhttp.HandlerFor(args.Registry, promhttp.HandlerOpts{})
	extra := []route{
		{method: http.MethodGet, pattern: docsPath, handler: swaggerUI},
		{method: http.MethodGet, pattern: specPath, handler: serveSpec(spec)},
		{method: http.MethodGet, pattern: "/healthz", handler: healthz},
		{method: http.MethodGet, pattern: "/metrics", handler: func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			metricsHandler.ServeHTTP(w, r)
		}},
	}
	for _, rt := range extra {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, fmt.Errorf("error registering %s %s: %w", rt.method, rt.pattern, err)
		}
	}
	return mux, nil
}

func (u *UserService) routes() []route {
	userSchema := schemaRef("User")
	return []route{
		{
			method:  http.MethodPost,
			pattern: "/user/ajouter",
			handler: u.CreateUser,
			doc: operationDoc{
				Summary:     "Ajouter un utilisateur",
				Description: "Endpoint pour ajouter un utilisateur.",
				Body:        &bodyDoc{Description: "Les détails de l'utilisateur à ajouter.", Schema: schemaRef("UserInput")},
				Responses: []responseDoc{
					{Status: http.StatusOK, Description: "Succès, renvoie l'utilisateur ajouté.", Schema: objectSchema(map[string]any{"message": stringSchema(), "user": userSchema})},
					{Status: http.StatusBadRequest, Description: `Erreur de validation ou champ "nom"/"email" en double.`, Schema: schemaRef("Error")},
				},
			},
		},
		{
			method:  http.MethodGet,
			pattern: "/user/lister",
			handler: u.ListUsers,
			doc: operationDoc{
				Summary:     "Récupérer la liste des utilisateurs",
				Description: "Endpoint pour récupérer la liste de tous les utilisateurs.",
				Responses: []responseDoc{
					{Status: http.StatusOK, Description: "Succès, renvoie la liste des utilisateurs.", Schema: objectSchema(map[string]any{"success": boolSchema(), "liste": arraySchema(userSchema)})},
					{Status: http.StatusInternalServerError, Description: "Erreur interne du serveur.", Schema: schemaRef("Error")},
				},
			},
		},
		{
			method:  http.MethodGet,
			pattern: "/user/{id}/supprimer",
			handler: u.DeleteUser,
			doc: operationDoc{
				Summary:     "Supprimer un utilisateur par ID",
				Description: "Endpoint pour supprimer un utilisateur par son ID.",
				Params:      []paramDoc{{Name: "id", In: "path", Required: true, Description: "ID de l'utilisateur à supprimer."}},
				Responses: []responseDoc{
					{Status: http.StatusOK, Description: "Succès, renvoie l'utilisateur supprimé.", Schema: objectSchema(map[string]any{"success": boolSchema(), "userDeleted": userSchema})},
					{Status: http.StatusNotFound, Description: "Aucun utilisateur trouvé avec cet ID.", Schema: schemaRef("Error")},
					{Status: http.StatusInternalServerError, Description: "Erreur interne du serveur.", Schema: schemaRef("Error")},
				},
			},
		},
		{
			method:  http.MethodPut,
			pattern: "/user/{id}/modifier",
			handler: u.UpdateUser,
			doc: operationDoc{
				Summary:     "Modifier un utilisateur par ID",
				Description: "Endpoint pour modifier un utilisateur par son ID. Seuls les champs fournis sont modifiés.",
				Params:      []paramDoc{{Name: "id", In: "path", Required: true, Description: "ID de l'utilisateur à modifier."}},
				Body:        &bodyDoc{Description: "Les détails mis à jour de l'utilisateur.", Schema: schemaRef("UserInput")},
				Responses: []responseDoc{
					{Status: http.StatusOK, Description: "Succès, renvoie l'utilisateur modifié.", Schema: objectSchema(map[string]any{"userUpdated": userSchema})},
					{Status: http.StatusNotFound, Description: "Aucun utilisateur trouvé avec cet ID.", Schema: schemaRef("Error")},
					{Status: http.StatusBadRequest, Description: "Erreur lors de la modification de l'utilisateur.", Schema: schemaRef("Error")},
				},
			},
		},
		{
			method:  http.MethodGet,
			pattern: "/user/rechercher",
			handler: u.SearchUsers,
			doc: operationDoc{
				Summary:     "Rechercher des utilisateurs",
				Description: "Endpoint pour rechercher des utilisateurs par nom et/ou prénom.",
				Params: []paramDoc{
					{Name: "nom", In: "query", Description: "Nom de l'utilisateur (recherche partielle insensible à la casse)."},
					{Name: "prenom", In: "query", Description: "Prénom de l'utilisateur (recherche partielle insensible à la casse)."},
				},
				Responses: []responseDoc{
					{Status: http.StatusOK, Description: "Succès, renvoie la liste des utilisateurs correspondants.", Schema: arraySchema(userSchema)},
					{Status: http.StatusBadRequest, Description: "Le nom ou le prenom est requis pour la recherche.", Schema: schemaRef("Error")},
					{Status: http.StatusInternalServerError, Description: "Erreur interne du serveur.", Schema: schemaRef("Error")},
				},
			},
		},
	}
}

func healthz(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Ok"})
}
