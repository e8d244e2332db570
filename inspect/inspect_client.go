package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-bond/lazyobj"
	"github.com/go-resty/resty/v2"
)

type inspectClient struct {
	client *resty.Client

	headers map[string]string

	objectsURL     string
	propertiesURL  string
	statusURL      string
	materializeURL string
}

func NewInspectRemote(url string, headers map[string]string) Inspect {
	url = strings.TrimSuffix(url, "/")

	return &inspectClient{
		client:         resty.New(),
		headers:        headers,
		objectsURL:     url + ObjectsPath,
		propertiesURL:  url + PropertiesPath,
		statusURL:      url + StatusPath,
		materializeURL: url + MaterializePath,
	}
}

func (i *inspectClient) Objects() ([]ObjectEntry, error) {
	var result []ObjectEntry
	err := i.post(context.Background(), i.objectsURL, nil, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (i *inspectClient) Properties(object string) (map[string]string, error) {
	var result map[string]string
	err := i.post(context.Background(), i.propertiesURL, requestObject{Object: object}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (i *inspectClient) Status(object string) ([]lazyobj.PropertyStatus, error) {
	var result []lazyobj.PropertyStatus
	err := i.post(context.Background(), i.statusURL, requestObject{Object: object}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (i *inspectClient) Materialize(ctx context.Context, object string, properties []string) ([]lazyobj.PropertyStatus, error) {
	rqStruct := requestMaterialize{
		requestObject: requestObject{Object: object},
		Properties:    properties,
	}

	var result []lazyobj.PropertyStatus
	err := i.post(ctx, i.materializeURL, rqStruct, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (i *inspectClient) post(ctx context.Context, url string, rqStruct any, result any) error {
	request := i.client.R().
		SetContext(ctx).
		SetHeaders(i.headers).
		SetHeader("Accept", "application/json")

	if rqStruct != nil {
		rqData, err := json.Marshal(rqStruct)
		if err != nil {
			return err
		}
		request = request.SetBody(rqData)
	}

	resp, err := request.Post(url)
	if err != nil {
		return err
	}

	if resp.IsError() {
		var respErr responseError
		if json.Unmarshal(resp.Body(), &respErr) == nil && respErr.Error != "" {
			return fmt.Errorf("request failed with status: %s: %s", resp.Status(), respErr.Error)
		}
		return fmt.Errorf("request failed with status: %s", resp.Status())
	}

	return json.Unmarshal(resp.Body(), result)
}
