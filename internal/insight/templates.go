package insight

import "fmt"

// Narrative templates, centralized so numeric-fact extraction stays
// separate from text rendering. One fixed template per statement type;
// substitution only, never generated text.
const (
	tmplTemporalConcentration = "Las actividades se concentran significativamente en el período iniciado el %s, con %d intervenciones (%.1f%% del total)."
	tmplNegativeObservations  = "Las observaciones del campo %s presentan un tono predominantemente negativo (polaridad %.2f)."
	tmplCorrelation           = "Se detecta una correlación %s %s (%.3f) entre %s y %s sobre %d registros comparables."
	tmplTrendIncrease         = "Las intervenciones aumentaron un %.0f%% en el período iniciado el %s (de %d a %d registros)."
	tmplTrendDecrease         = "Las intervenciones disminuyeron un %.0f%% en el período iniciado el %s (de %d a %d registros)."
	tmplVolume                = "Los %d registros procesados representan un %s."
	tmplActivityFocus         = "El portafolio operativo muestra %s: '%s' representa el %.1f%% de las intervenciones (%d registros)."
	tmplGeoCoverage           = "La cobertura territorial es %s: %d comuna(s), con el %.1f%% de las actividades concentradas en la comuna %s."
	tmplProductivity          = "La productividad laboral registra %.2f horas por trabajador, clasificada como %s."
	tmplMachineryUsage        = "El parque de maquinaria comprende %d tipo(s) de equipo; '%s' es el más utilizado con %d de %d usos registrados."
	tmplTeamComposition       = "La composición del personal se concentra en %s, con el %.1f%% del total registrado (%d personas)."
	tmplKeywordFocus          = "Las observaciones de %s se centran en: %s."
	tmplRecSchedule           = "Considerar aumentar la capacidad operativa alrededor del período iniciado el %s, que concentra %d intervenciones."
	tmplRecGeoDiversify       = "La alta concentración (%.1f%%) en la comuna %s sugiere oportunidades de redistribución territorial."
	tmplRecMachineryHours     = "La correlación fuerte (%.3f) entre %s y %s sugiere revisar la planificación de maquinaria para equilibrar horas de uso."
	tmplRecStrongCorrelation  = "La relación fuerte (%.3f) entre %s y %s puede aprovecharse para planificar recursos de forma conjunta."
	tmplRecDataQuality        = "Mejorar la captura en campo de las categorías con baja completitud: %s."
)

// correlationDirection names the sign of a coefficient for rendering.
func correlationDirection(r float64) string {
	if r < 0 {
		return "negativa"
	}
	return "positiva"
}

// tierLabel translates a correlation tier for rendering.
func tierLabel(tier string) string {
	switch tier {
	case "strong":
		return "fuerte"
	case "moderate":
		return "moderada"
	case "weak":
		return "débil"
	default:
		return tier
	}
}

// volumeLabel bands the dataset size the way field supervisors read it.
func volumeLabel(records int) string {
	switch {
	case records > 100:
		return "alto volumen operativo"
	case records > 50:
		return "volumen operativo moderado"
	default:
		return "volumen operativo controlado"
	}
}

// focusLabel bands the share of the dominant activity.
func focusLabel(share float64) string {
	switch {
	case share > 0.50:
		return "alta especialización en una actividad principal"
	case share > 0.30:
		return "moderada concentración con cierta diversificación"
	default:
		return "amplia diversificación de actividades"
	}
}

// coverageLabel bands the distinct-commune count.
func coverageLabel(communes int) string {
	switch {
	case communes == 1:
		return "altamente focalizada"
	case communes <= 3:
		return "concentrada en pocas comunas"
	case communes <= 6:
		return "distribuida en un conjunto moderado de comunas"
	default:
		return "ampliamente distribuida"
	}
}

// productivityLabel bands hours worked per worker per intervention.
func productivityLabel(hoursPerWorker float64) (string, int) {
	switch {
	case hoursPerWorker > 8:
		return "alta", PriorityHigh
	case hoursPerWorker > 6:
		return "media", PriorityMedium
	default:
		return "baja", PriorityHigh
	}
}

func fact(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
