package configstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// PropertyKeyPrefix marks ConfigMap keys that become extra zoo.cfg
// properties, e.g. "zoo.cfg.tickTime: 2000".
const PropertyKeyPrefix = "zoo.cfg."

// LoadConfigMap reads Values from the data of a Kubernetes ConfigMap.
// Keys use the same names as the YAML file; integer keys must parse as
// integers.
func LoadConfigMap(ctx context.Context, client kubernetes.Interface, namespace, name string) (Values, error) {
	cm, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return Values{}, fmt.Errorf("get configmap %s/%s: %w", namespace, name, err)
	}
	v, err := FromConfigMap(cm)
	if err != nil {
		return Values{}, fmt.Errorf("configmap %s/%s: %w", namespace, name, err)
	}
	return v, nil
}

// FromConfigMap converts ConfigMap data into validated Values.
func FromConfigMap(cm *corev1.ConfigMap) (Values, error) {
	var v Values
	ints := map[string]*int{
		ClientPort.String():      &v.ClientPort,
		ConnectPort.String():     &v.ConnectPort,
		ElectionPort.String():    &v.ElectionPort,
		CleanupMaxFiles.String(): &v.CleanupMaxFiles,
	}

	for key, raw := range cm.Data {
		if dst, ok := ints[key]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return Values{}, fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
			continue
		}
		switch {
		case key == JavaEnvironment.String():
			v.JavaEnvironment = raw
		case key == Log4jProperties.String():
			v.Log4jProperties = raw
		case strings.HasPrefix(key, PropertyKeyPrefix):
			if v.ExtraProperties == nil {
				v.ExtraProperties = make(map[string]string)
			}
			v.ExtraProperties[strings.TrimPrefix(key, PropertyKeyPrefix)] = raw
		}
	}

	if err := v.Validate(); err != nil {
		return Values{}, fmt.Errorf("invalid values: %w", err)
	}
	return v, nil
}
