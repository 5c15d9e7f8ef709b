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

// Package state keeps the last known parameter values in a bbolt database
package state

import (
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

const (
	BucketName = "params"
)

// Record is the stored state of one parameter
type Record struct {
	Addr    param.Address `json:"addr"`
	Index   int32         `json:"index"`
	Value   int32         `json:"value"`
	Updated time.Time     `json:"updated"`
}

// ErrNotFound returned when a parameter was never stored
type ErrNotFound struct {
	Addr  param.Address
	Index int32
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("Parameter not found: %s[%d]", e.Addr, e.Index)
}

// ErrBucketNotFound returned when the database misses the parameter bucket
type ErrBucketNotFound struct {
	Name string
}

func (e ErrBucketNotFound) Error() string {
	return fmt.Sprintf("Bucket not found: %s", e.Name)
}

type ParamState struct {
	DB *bbolt.DB
}

// Open opens (creates if needed) the parameter database at path
func Open(path string) (*ParamState, error) {
	log.Debug("Opening parameter database: %s", path)
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &ParamState{DB: db}, nil
}

// Close ...
func (s *ParamState) Close() error {
	return s.DB.Close()
}

// key is the big endian address followed by the big endian index, so the
// records are ordered by address and index
func key(addr param.Address, index int32) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[:4], uint32(addr))
	binary.BigEndian.PutUint32(b[4:], uint32(index))
	return b
}

// Put stores the value of a parameter
func (s *ParamState) Put(addr param.Address, index, value int32) error {
	log.Debug("Storing parameter: %s[%d] = %d", addr, index, value)
	data, err := yaml.Marshal(&Record{
		Addr:    addr,
		Index:   index,
		Value:   value,
		Updated: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return ErrBucketNotFound{Name: BucketName}
		}
		return b.Put(key(addr, index), data)
	})
}

// Get returns the stored state of a parameter
func (s *ParamState) Get(addr param.Address, index int32) (*Record, error) {
	record := &Record{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return ErrBucketNotFound{Name: BucketName}
		}
		data := b.Get(key(addr, index))
		if data == nil {
			return ErrNotFound{Addr: addr, Index: index}
		}
		return yaml.Unmarshal(data, record)
	}); err != nil {
		return nil, err
	}
	return record, nil
}

// All returns every stored parameter ordered by address and index
func (s *ParamState) All() ([]*Record, error) {
	var records []*Record
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return ErrBucketNotFound{Name: BucketName}
		}
		return b.ForEach(func(_, data []byte) error {
			record := &Record{}
			if err := yaml.Unmarshal(data, record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return records, nil
}
