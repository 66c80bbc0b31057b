// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vmware-tanzu/vm-reconciler/api/v1alpha1"
	pkgerr "github.com/vmware-tanzu/vm-reconciler/pkg/errors"
)

const (
	tagMachinePath     = "machinepath"
	tagReadOnly        = "readonly"
	tagRequiredFolder  = "required_for_folder"
	tagExcludeTemplate = "excluded_for_template"
	tagCommandEnsure   = "excluded_for_ensure"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		if err := validate.RegisterValidation(tagMachinePath, isMachinePath); err != nil {
			panic(err)
		}
		validate.RegisterStructValidation(descriptorRules, v1alpha1.ResourceDescriptor{})
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func isMachinePath(fl validator.FieldLevel) bool {
	_, err := v1alpha1.ParsePath(fl.Field().String())
	return err == nil
}

// descriptorRules are the rules that span more than one field.
func descriptorRules(sl validator.StructLevel) {
	d := sl.Current().Interface().(v1alpha1.ResourceDescriptor)

	if d.SourceTypeOrDefault() == v1alpha1.SourceTypeFolder {
		if d.Source == "" {
			sl.ReportError(d.Source, "source", "Source", tagRequiredFolder, "")
		}
	}

	// A template has no placement or hardware of its own.
	if d.Template {
		if d.CPUs != nil {
			sl.ReportError(d.CPUs, "cpus", "CPUs", tagExcludeTemplate, "")
		}
		if d.Memory != nil {
			sl.ReportError(d.Memory, "memory", "Memory", tagExcludeTemplate, "")
		}
		if d.ResourcePool != "" {
			sl.ReportError(d.ResourcePool, "resource_pool", "ResourcePool", tagExcludeTemplate, "")
		}
		if d.CreateCommand != nil {
			sl.ReportError(d.CreateCommand, "create_command", "CreateCommand", tagExcludeTemplate, "")
		}
	}

	if d.CreateCommand != nil {
		switch ensure := d.EnsureOrDefault(); ensure {
		case v1alpha1.EnsureStopped, v1alpha1.EnsureSuspended,
			v1alpha1.EnsureAbsent, v1alpha1.EnsureUnregistered:
			sl.ReportError(d.CreateCommand, "create_command", "CreateCommand", tagCommandEnsure, string(ensure))
		}
	}

	for _, name := range ReadOnlyFieldsSet(d.ReadOnlyProperties) {
		sl.ReportError(nil, name, name, tagReadOnly, "")
	}
}

// ReadOnlyFieldsSet returns the names of the read-only properties that are
// set.
func ReadOnlyFieldsSet(p v1alpha1.ReadOnlyProperties) []string {
	var names []string

	v := reflect.ValueOf(p)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		if (f.Kind() == reflect.Pointer && !f.IsNil()) || (f.Kind() == reflect.Slice && f.Len() > 0) {
			names = append(names, jsonName(t.Field(i)))
		}
	}
	return names
}

// ValidateDescriptor returns a KindUser error that lists every problem with
// the descriptor.
func ValidateDescriptor(d v1alpha1.ResourceDescriptor) error {
	err := getValidator().Struct(d)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerr.Userf(d.Path, "invalid descriptor: %s", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(d, fe))
	}
	return pkgerr.Userf(d.Path, "invalid descriptor: %s", strings.Join(msgs, "; "))
}

func fieldPath(fe validator.FieldError) string {
	if _, p, ok := strings.Cut(fe.Namespace(), "."); ok {
		return p
	}
	return fe.Field()
}

func message(d v1alpha1.ResourceDescriptor, fe validator.FieldError) string {
	field := fieldPath(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case tagMachinePath:
		if _, err := v1alpha1.ParsePath(d.Path); err != nil {
			return err.Error()
		}
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must not be empty", field)
	case tagReadOnly:
		return fmt.Sprintf("%s is read-only", field)
	case tagRequiredFolder:
		return fmt.Sprintf("%s is required when source_type is %s", field, v1alpha1.SourceTypeFolder)
	case tagExcludeTemplate:
		return fmt.Sprintf("%s is not allowed for a template", field)
	case tagCommandEnsure:
		return fmt.Sprintf("%s is not allowed when ensure is %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}
