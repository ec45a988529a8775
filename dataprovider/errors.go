// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dataprovider

import "errors"

// ErrInvalidDataInResponse reports a semantic violation inside a received
// record — a field that decodes but cannot be used, such as an unparseable
// URL. Providers wrap it around the detail so the engine's error channels
// can classify the failure without understanding the feature.
var ErrInvalidDataInResponse = errors.New("invalid data in response")
