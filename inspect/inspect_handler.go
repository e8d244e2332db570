package inspect

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
)

const (
	ObjectsPath     = "/objects"
	PropertiesPath  = "/properties"
	StatusPath      = "/status"
	MaterializePath = "/materialize"
)

func NewInspectHandler(inspect Inspect) http.HandlerFunc {
	var (
		// path pattern matchers
		endsInObjects     = regexp.MustCompile(ObjectsPath + "$")
		endsInProperties  = regexp.MustCompile(PropertiesPath + "$")
		endsInStatus      = regexp.MustCompile(StatusPath + "$")
		endsInMaterialize = regexp.MustCompile(MaterializePath + "$")

		// handlers
		objectsHandler     = buildObjectsHandler(inspect)
		propertiesHandler  = buildPropertiesHandler(inspect)
		statusHandler      = buildStatusHandler(inspect)
		materializeHandler = buildMaterializeHandler(inspect)
	)

	return func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case endsInObjects.MatchString(request.URL.Path):
			objectsHandler.ServeHTTP(writer, request)
		case endsInProperties.MatchString(request.URL.Path):
			propertiesHandler.ServeHTTP(writer, request)
		case endsInStatus.MatchString(request.URL.Path):
			statusHandler.ServeHTTP(writer, request)
		case endsInMaterialize.MatchString(request.URL.Path):
			materializeHandler.ServeHTTP(writer, request)
		default:
			http.NotFound(writer, request)
		}
	}
}

type responseError struct {
	Error string `json:"error"`
}

func newResponseErrorBytes(err error) ([]byte, error) {
	return json.Marshal(responseError{Error: err.Error()})
}

func acceptsJSON(request *http.Request) bool {
	accept := request.Header.Get("Accept")
	return accept == "" || accept == "*/*" || accept == "application/json"
}

func buildObjectsHandler(inspect Inspect) http.HandlerFunc {
	return func(response http.ResponseWriter, request *http.Request) {
		if !acceptsJSON(request) {
			writeEmptyResponse(response, http.StatusNotAcceptable)
			return
		}

		objects, err := inspect.Objects()
		if err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		writeJSONResponse(response, objects)
	}
}

type requestObject struct {
	Object string `json:"object"`
}

func buildPropertiesHandler(inspect Inspect) http.HandlerFunc {
	return func(response http.ResponseWriter, request *http.Request) {
		if !acceptsJSON(request) {
			writeEmptyResponse(response, http.StatusNotAcceptable)
			return
		}

		var req requestObject
		if err := readRequest(request, &req); err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		properties, err := inspect.Properties(req.Object)
		if err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		writeJSONResponse(response, properties)
	}
}

func buildStatusHandler(inspect Inspect) http.HandlerFunc {
	return func(response http.ResponseWriter, request *http.Request) {
		if !acceptsJSON(request) {
			writeEmptyResponse(response, http.StatusNotAcceptable)
			return
		}

		var req requestObject
		if err := readRequest(request, &req); err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		status, err := inspect.Status(req.Object)
		if err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		writeJSONResponse(response, status)
	}
}

type requestMaterialize struct {
	requestObject
	Properties []string `json:"properties"`
}

func buildMaterializeHandler(inspect Inspect) http.HandlerFunc {
	return func(response http.ResponseWriter, request *http.Request) {
		if !acceptsJSON(request) {
			writeEmptyResponse(response, http.StatusNotAcceptable)
			return
		}

		var req requestMaterialize
		if err := readRequest(request, &req); err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		status, err := inspect.Materialize(request.Context(), req.Object, req.Properties)
		if err != nil {
			writeErrorResponse(response, http.StatusInternalServerError, err)
			return
		}

		writeJSONResponse(response, status)
	}
}

func readRequest(request *http.Request, req any) error {
	data, err := io.ReadAll(request.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, req)
}

func writeJSONResponse(response http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeErrorResponse(response, http.StatusInternalServerError, err)
		return
	}

	response.Header().Set("Content-Type", "application/json")
	writeResponse(response, http.StatusOK, data)
}

func writeResponse(response http.ResponseWriter, status int, data []byte) {
	response.WriteHeader(status)
	_, _ = response.Write(data)
}

func writeEmptyResponse(response http.ResponseWriter, status int) {
	response.WriteHeader(status)
}

func writeErrorResponse(response http.ResponseWriter, status int, err error) {
	response.WriteHeader(status)

	errBytes, errErrResp := newResponseErrorBytes(err)
	if errErrResp == nil {
		_, _ = response.Write(errBytes)
	}
}
