package launch

import "github.com/hochfrequenz/codigo-course-studio/internal/domain"

const (
	high   = domain.PriorityHigh
	medium = domain.PriorityMedium
	low    = domain.PriorityLow
)

var tables = map[domain.Stage][]domain.LaunchTask{
	domain.StageNothingStarted: {
		{Name: "Definir nicho y audiencia ideal", Description: "Investigar y definir claramente el nicho de mercado y el perfil del alumno ideal (avatar).", Priority: high, Order: 1},
		{Name: "Validar idea de curso", Description: "Confirmar el interés del mercado en el tema del curso (encuestas, entrevistas, preventa).", Priority: high, Order: 2},
		{Name: "Estructurar contenido del curso (Módulos y Lecciones)", Description: "Crear un esquema detallado de módulos, lecciones y temas principales.", Priority: high, Order: 3},
		{Name: "Desarrollar el contenido del curso", Description: "Crear materiales (videos, textos, PDFs, ejercicios) para cada lección.", Priority: high, Order: 4},
		{Name: "Elegir y configurar plataforma de venta/alojamiento", Description: "Seleccionar plataforma (Teachable, Thinkific, WordPress+LMS, etc.) y configurarla.", Priority: medium, Order: 5},
		{Name: "Crear página de ventas (Landing Page)", Description: "Diseñar y escribir el copy de una página de ventas persuasiva y optimizada.", Priority: medium, Order: 6},
		{Name: "Definir estrategia de precios y oferta", Description: "Establecer el precio del curso y posibles ofertas de lanzamiento.", Priority: medium, Order: 7},
		{Name: "Plan de marketing de lanzamiento", Description: "Definir estrategias para atraer los primeros alumnos (email, redes, colaboraciones).", Priority: medium, Order: 8},
	},
	domain.StageLandingReady: {
		{Name: "Finalizar diseño y copy de la Landing Page", Description: "Asegurar que todos los elementos de la página de ventas estén optimizados para la conversión.", Priority: high, Order: 1},
		{Name: "Configurar e integrar pasarela de pago", Description: "Conectar Stripe, PayPal u otra pasarela con la plataforma y la landing page.", Priority: high, Order: 2},
		{Name: "Realizar pruebas exhaustivas del flujo de compra", Description: "Comprobar el proceso de inscripción, pago y acceso al curso desde varios dispositivos.", Priority: high, Order: 3},
		{Name: "Configurar secuencia de emails de bienvenida", Description: "Redactar y automatizar los correos para nuevos alumnos (bienvenida, acceso, primeros pasos).", Priority: medium, Order: 4},
		{Name: "Preparar campaña de expectativa pre-lanzamiento", Description: "Generar interés y anticipación antes del lanzamiento oficial (emails, redes sociales).", Priority: medium, Order: 5},
		{Name: "Definir métricas de seguimiento del lanzamiento", Description: "Establecer KPIs para medir el éxito del lanzamiento (visitas, conversiones, etc.).", Priority: low, Order: 6},
	},
	domain.StageContentReady: {
		{Name: "Revisión final y edición del contenido del curso", Description: "Asegurar la calidad, corregir errores y mejorar la claridad de todos los materiales.", Priority: high, Order: 1},
		{Name: "Subir todo el contenido a la plataforma", Description: "Cargar videos, PDFs, audios y otros recursos a la plataforma de alojamiento del curso.", Priority: high, Order: 2},
		{Name: "Configurar acceso, precios y bundles en la plataforma", Description: "Definir los planes de acceso, precios finales y posibles paquetes o bonos.", Priority: high, Order: 3},
		{Name: "Preparar y programar campaña de email marketing para el lanzamiento", Description: "Redactar la secuencia de emails para el lanzamiento (anuncio, recordatorios, cierre de carrito).", Priority: medium, Order: 4},
		{Name: "Crear y programar contenido para redes sociales", Description: "Diseñar posts, historias y anuncios para promocionar el lanzamiento.", Priority: medium, Order: 5},
		{Name: "Anunciar oficialmente la fecha de lanzamiento", Description: "Comunicar a la audiencia la fecha y hora de apertura de inscripciones.", Priority: medium, Order: 6},
		{Name: "Preparar plan de soporte para alumnos", Description: "Definir cómo se atenderán las dudas y consultas durante y después del lanzamiento.", Priority: low, Order: 7},
	},
	domain.StageLaunched: {
		{Name: "Monitorear ventas y métricas en tiempo real", Description: "Seguir de cerca las inscripciones, conversiones y el rendimiento de las campañas.", Priority: high, Order: 1},
		{Name: "Brindar soporte activo a los nuevos alumnos", Description: "Responder preguntas, resolver problemas técnicos y fomentar la participación.", Priority: high, Order: 2},
		{Name: "Realizar ajustes en la campaña de marketing según resultados", Description: "Optimizar anuncios, emails o copys si es necesario para mejorar la conversión.", Priority: medium, Order: 3},
		{Name: "Recopilar testimonios y feedback inicial", Description: "Pedir a los primeros alumnos sus opiniones y testimonios sobre el curso.", Priority: medium, Order: 4},
		{Name: "Planificar estrategias post-lanzamiento", Description: "Definir cómo se seguirá vendiendo el curso (evergreen, próximos lanzamientos).", Priority: low, Order: 5},
	},
	domain.StageUnclear: {
		{Name: "Clarificar etapa actual del lanzamiento", Description: "Define con más detalle en qué punto te encuentras para obtener un plan más preciso.", Priority: high, Order: 1},
		{Name: "Revisar checklist general de lanzamiento de producto digital", Description: "Consultar una lista de tareas estándar para lanzamientos.", Priority: medium, Order: 2},
	},
}
