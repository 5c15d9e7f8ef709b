/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package command

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/srv/control"
)

// ErrApi returned when the control server answers with an error status
type ErrApi struct {
	Status int
	What   string
}

func (e ErrApi) Error() string {
	return fmt.Sprintf("API error %d %s: %s", e.Status, http.StatusText(e.Status), e.What)
}

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d%s", cfg.ApiAddress, cfg.ApiPort, control.ApiPrefix),
	}
}

func (c *ApiClient) url(format string, v ...interface{}) string {
	return c.ApiPrefix + fmt.Sprintf(format, v...)
}

func check(r *req.Resp) error {
	if code := r.Response().StatusCode; code != http.StatusOK {
		return ErrApi{Status: code, What: strings.TrimSpace(r.String())}
	}
	return nil
}

func (c *ApiClient) getJSON(url string, out interface{}) error {
	r, err := req.Get(url)
	if err != nil {
		return err
	}
	if err := check(r); err != nil {
		return err
	}
	return r.ToJSON(out)
}

func (c *ApiClient) postJSON(url string, in, out interface{}) error {
	r, err := req.Post(url, req.BodyJSON(in))
	if err != nil {
		return err
	}
	if err := check(r); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return r.ToJSON(out)
}
